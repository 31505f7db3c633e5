package arena

import "encoding/binary"

// magic identifies a tersect-go database file. Readers must refuse a
// file whose first 14 bytes don't match exactly.
var magic = [14]byte{'T', 'E', 'R', 'S', 'E', 'C', 'T', 'G', 'O', 'v', '0', '1', 0, 0}

// Fixed byte offsets of the header fields, per spec §6. Every u64/u32
// field is placed on an 8-byte boundary so the mapped header can be
// read without unaligned access.
const (
	offMagic       = 0  // 14 bytes
	offDBSize      = 16 // u64
	offWordSize    = 24 // u16
	offChromsHead  = 32 // u64
	offChromCount  = 40 // u32
	offGenomesHead = 48 // u64
	offGenomeCount = 56 // u32
	offFreeHead    = 64 // u64

	// HeaderSize is the fixed size, in bytes, of the database header.
	HeaderSize = 72
)

// wordSizeBits is the bitmap word size this build produces; it is
// recorded in every header and checked on open.
const wordSizeBits = 64

type header struct {
	dbSize       uint64
	wordSize     uint16
	chromsHead   uint64
	chromCount   uint32
	genomesHead  uint64
	genomeCount  uint32
	freeHead     uint64
}

func (h *header) encode(buf []byte) {
	copy(buf[offMagic:], magic[:])
	binary.LittleEndian.PutUint64(buf[offDBSize:], h.dbSize)
	binary.LittleEndian.PutUint16(buf[offWordSize:], h.wordSize)
	binary.LittleEndian.PutUint64(buf[offChromsHead:], h.chromsHead)
	binary.LittleEndian.PutUint32(buf[offChromCount:], h.chromCount)
	binary.LittleEndian.PutUint64(buf[offGenomesHead:], h.genomesHead)
	binary.LittleEndian.PutUint32(buf[offGenomeCount:], h.genomeCount)
	binary.LittleEndian.PutUint64(buf[offFreeHead:], h.freeHead)
}

func decodeHeader(buf []byte) (*header, bool) {
	if len(buf) < HeaderSize {
		return nil, false
	}
	if string(buf[offMagic:offMagic+14]) != string(magic[:]) {
		return nil, false
	}
	h := &header{
		dbSize:      binary.LittleEndian.Uint64(buf[offDBSize:]),
		wordSize:    binary.LittleEndian.Uint16(buf[offWordSize:]),
		chromsHead:  binary.LittleEndian.Uint64(buf[offChromsHead:]),
		chromCount:  binary.LittleEndian.Uint32(buf[offChromCount:]),
		genomesHead: binary.LittleEndian.Uint64(buf[offGenomesHead:]),
		genomeCount: binary.LittleEndian.Uint32(buf[offGenomeCount:]),
		freeHead:    binary.LittleEndian.Uint64(buf[offFreeHead:]),
	}
	return h, true
}
