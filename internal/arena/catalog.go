package arena

import (
	"encoding/binary"

	"github.com/tjkurowski/tersect-go/internal/bitmap"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

// Record sizes, per spec §6.
const (
	chromosomeRecordSize = 40 // nameOffset,variantsOffset,bitmapsHead u64 x3, variantCount,length u32 x2, next u64
	genomeRecordSize     = 16 // nameOffset, next
	bitmapRecordSize     = 48 // genomeOffset,sizeWords,arrayOffset,startMask,endMask,next
	variantRecordSize    = 16 // position u32, kind u8, pad[3], alleleStringOffset u64
)

// VariantKind enumerates the twelve ordered SNV (ref,alt) pairs over
// {A,C,G,T}, plus Indel for anything with ref or alt longer than one
// base.
type VariantKind uint8

const (
	Indel VariantKind = iota
	AC
	AG
	AT
	CA
	CG
	CT
	GA
	GC
	GT
	TA
	TC
	TG
)

var snvBases = map[VariantKind][2]byte{
	AC: {'A', 'C'}, AG: {'A', 'G'}, AT: {'A', 'T'},
	CA: {'C', 'A'}, CG: {'C', 'G'}, CT: {'C', 'T'},
	GA: {'G', 'A'}, GC: {'G', 'C'}, GT: {'G', 'T'},
	TA: {'T', 'A'}, TC: {'T', 'C'}, TG: {'T', 'G'},
}

var snvKindOf = func() map[[2]byte]VariantKind {
	m := map[[2]byte]VariantKind{}
	for k, pair := range snvBases {
		m[pair] = k
	}
	return m
}()

// SNVKind returns the VariantKind for a single-base ref/alt pair, or
// (Indel, false) if ref==alt or either is not a canonical base.
func SNVKind(ref, alt byte) (VariantKind, bool) {
	k, ok := snvKindOf[[2]byte{ref, alt}]
	return k, ok
}

// Bases returns the literal ref/alt bases for an SNV kind.
func (k VariantKind) Bases() (ref, alt byte, ok bool) {
	pair, ok := snvBases[k]
	return pair[0], pair[1], ok
}

// Variant is a single catalogued site within a chromosome: its 1-based
// position and the allele change. For an Indel, AlleleOffset points at
// the interned "REF\tALT" string; for an SNV it is 0.
type Variant struct {
	Position     uint32
	Kind         VariantKind
	AlleleOffset uint64
}

func encodeVariant(buf []byte, v Variant) {
	binary.LittleEndian.PutUint32(buf, v.Position)
	buf[4] = byte(v.Kind)
	binary.LittleEndian.PutUint64(buf[8:], v.AlleleOffset)
}

func decodeVariant(buf []byte) Variant {
	return Variant{
		Position:     binary.LittleEndian.Uint32(buf),
		Kind:         VariantKind(buf[4]),
		AlleleOffset: binary.LittleEndian.Uint64(buf[8:]),
	}
}

// ChromosomeRef is a handle to a catalogued chromosome: its byte
// offset plus the decoded fixed fields.
type ChromosomeRef struct {
	Offset         uint64
	NameOffset     uint64
	VariantsOffset uint64
	BitmapsHead    uint64
	VariantCount   uint32
	Length         uint32
	Next           uint64
}

func (a *Arena) decodeChromosome(off uint64) ChromosomeRef {
	buf := a.data[off : off+chromosomeRecordSize]
	return ChromosomeRef{
		Offset:         off,
		NameOffset:     binary.LittleEndian.Uint64(buf[0:]),
		VariantsOffset: binary.LittleEndian.Uint64(buf[8:]),
		BitmapsHead:    binary.LittleEndian.Uint64(buf[16:]),
		VariantCount:   binary.LittleEndian.Uint32(buf[24:]),
		Length:         binary.LittleEndian.Uint32(buf[28:]),
		Next:           binary.LittleEndian.Uint64(buf[32:]),
	}
}

func (a *Arena) encodeChromosome(c ChromosomeRef) {
	buf := a.data[c.Offset : c.Offset+chromosomeRecordSize]
	binary.LittleEndian.PutUint64(buf[0:], c.NameOffset)
	binary.LittleEndian.PutUint64(buf[8:], c.VariantsOffset)
	binary.LittleEndian.PutUint64(buf[16:], c.BitmapsHead)
	binary.LittleEndian.PutUint32(buf[24:], c.VariantCount)
	binary.LittleEndian.PutUint32(buf[28:], c.Length)
	binary.LittleEndian.PutUint64(buf[32:], c.Next)
}

// ChromosomeName returns the chromosome's name.
func (a *Arena) ChromosomeName(c ChromosomeRef) string { return a.getString(c.NameOffset) }

// Variants decodes the chromosome's full, ordered variant table.
func (a *Arena) Variants(c ChromosomeRef) []Variant {
	out := make([]Variant, c.VariantCount)
	for i := range out {
		off := c.VariantsOffset + uint64(i)*variantRecordSize
		out[i] = decodeVariant(a.data[off : off+variantRecordSize])
	}
	return out
}

// Chromosomes returns every catalogued chromosome, in insertion order.
func (a *Arena) Chromosomes() []ChromosomeRef {
	var out []ChromosomeRef
	for off := a.header().chromsHead; off != 0; {
		c := a.decodeChromosome(off)
		out = append(out, c)
		off = c.Next
	}
	return out
}

// ChromosomeByName performs a linear scan of the chromosome catalog.
func (a *Arena) ChromosomeByName(name string) (ChromosomeRef, bool) {
	for _, c := range a.Chromosomes() {
		if a.ChromosomeName(c) == name {
			return c, true
		}
	}
	return ChromosomeRef{}, false
}

// AddChromosome appends a new chromosome with its full variant table.
// Chromosomes are created once during ingest and never deleted.
func (a *Arena) AddChromosome(name string, variants []Variant, length uint32) (ChromosomeRef, error) {
	if _, exists := a.ChromosomeByName(name); exists {
		return ChromosomeRef{}, tsterr.New(tsterr.BadRegion, "chromosome already exists: "+name)
	}
	variantsOff, err := a.Allocate(uint64(len(variants)) * variantRecordSize)
	if err != nil {
		return ChromosomeRef{}, err
	}
	for i, v := range variants {
		off := variantsOff + uint64(i)*variantRecordSize
		encodeVariant(a.data[off:off+variantRecordSize], v)
	}
	nameOff, err := a.putString(name)
	if err != nil {
		return ChromosomeRef{}, err
	}
	recOff, err := a.Allocate(chromosomeRecordSize)
	if err != nil {
		return ChromosomeRef{}, err
	}
	c := ChromosomeRef{
		Offset:         recOff,
		NameOffset:     nameOff,
		VariantsOffset: variantsOff,
		VariantCount:   uint32(len(variants)),
		Length:         length,
	}
	a.encodeChromosome(c)
	a.appendChromosome(recOff)
	return c, nil
}

func (a *Arena) appendChromosome(off uint64) {
	h := a.header()
	if h.chromsHead == 0 {
		h.chromsHead = off
	} else {
		tail := a.decodeChromosome(h.chromsHead)
		for tail.Next != 0 {
			tail = a.decodeChromosome(tail.Next)
		}
		tail.Next = off
		a.encodeChromosome(tail)
	}
	h.chromCount++
	a.writeHeader(h)
}

// GenomeRef is a handle to a catalogued sample (genome).
type GenomeRef struct {
	Offset     uint64
	NameOffset uint64
	Next       uint64
}

func (a *Arena) decodeGenome(off uint64) GenomeRef {
	buf := a.data[off : off+genomeRecordSize]
	return GenomeRef{
		Offset:     off,
		NameOffset: binary.LittleEndian.Uint64(buf[0:]),
		Next:       binary.LittleEndian.Uint64(buf[8:]),
	}
}

func (a *Arena) encodeGenome(g GenomeRef) {
	buf := a.data[g.Offset : g.Offset+genomeRecordSize]
	binary.LittleEndian.PutUint64(buf[0:], g.NameOffset)
	binary.LittleEndian.PutUint64(buf[8:], g.Next)
}

// GenomeName returns the sample's current name.
func (a *Arena) GenomeName(g GenomeRef) string { return a.getString(g.NameOffset) }

// Genomes returns every catalogued sample, in insertion order.
func (a *Arena) Genomes() []GenomeRef {
	var out []GenomeRef
	for off := a.header().genomesHead; off != 0; {
		g := a.decodeGenome(off)
		out = append(out, g)
		off = g.Next
	}
	return out
}

// GenomeByName resolves a sample name to its catalog entry, consulting
// (and populating) the in-process name cache before falling back to a
// linear scan.
func (a *Arena) GenomeByName(name string) (GenomeRef, bool) {
	if off, ok := a.nameCache.Get(name); ok {
		g := a.decodeGenome(off)
		if a.GenomeName(g) == name {
			return g, true
		}
		a.nameCache.Remove(name)
	}
	for _, g := range a.Genomes() {
		if a.GenomeName(g) == name {
			a.nameCache.Add(name, g.Offset)
			return g, true
		}
	}
	return GenomeRef{}, false
}

// AddGenome appends a new sample. A duplicate name is fatal.
func (a *Arena) AddGenome(name string) (GenomeRef, error) {
	if _, exists := a.GenomeByName(name); exists {
		return GenomeRef{}, tsterr.New(tsterr.DuplicateSample, name)
	}
	nameOff, err := a.putString(name)
	if err != nil {
		return GenomeRef{}, err
	}
	recOff, err := a.Allocate(genomeRecordSize)
	if err != nil {
		return GenomeRef{}, err
	}
	g := GenomeRef{Offset: recOff, NameOffset: nameOff}
	a.encodeGenome(g)

	h := a.header()
	if h.genomesHead == 0 {
		h.genomesHead = recOff
	} else {
		tail := a.decodeGenome(h.genomesHead)
		for tail.Next != 0 {
			tail = a.decodeGenome(tail.Next)
		}
		tail.Next = recOff
		a.encodeGenome(tail)
	}
	h.genomeCount++
	a.writeHeader(h)
	a.nameCache.Add(name, recOff)
	return g, nil
}

// RenameGenome appends a fresh name string and repoints the genome
// record at it. The old name string is left as dead space: the arena
// never reclaims space.
func (a *Arena) RenameGenome(oldName, newName string) error {
	g, ok := a.GenomeByName(oldName)
	if !ok {
		return tsterr.New(tsterr.NoSuchSample, oldName)
	}
	if _, exists := a.GenomeByName(newName); exists {
		return tsterr.New(tsterr.DuplicateSample, newName)
	}
	nameOff, err := a.putString(newName)
	if err != nil {
		return err
	}
	// Re-resolve the record offset: putString may have grown (and
	// remapped) the arena, invalidating any slice taken before it,
	// though not the offset itself.
	g.NameOffset = nameOff
	a.encodeGenome(g)
	a.nameCache.Remove(oldName)
	a.nameCache.Add(newName, g.Offset)
	return nil
}

// BitmapRef is a handle to one stored per-(sample,chromosome) bitmap.
type BitmapRef struct {
	Offset      uint64
	GenomeOff   uint64
	SizeWords   uint64
	ArrayOffset uint64
	StartMask   uint64
	EndMask     uint64
	Next        uint64
}

func (a *Arena) decodeBitmapRef(off uint64) BitmapRef {
	buf := a.data[off : off+bitmapRecordSize]
	return BitmapRef{
		Offset:      off,
		GenomeOff:   binary.LittleEndian.Uint64(buf[0:]),
		SizeWords:   binary.LittleEndian.Uint64(buf[8:]),
		ArrayOffset: binary.LittleEndian.Uint64(buf[16:]),
		StartMask:   binary.LittleEndian.Uint64(buf[24:]),
		EndMask:     binary.LittleEndian.Uint64(buf[32:]),
		Next:        binary.LittleEndian.Uint64(buf[40:]),
	}
}

func (a *Arena) encodeBitmapRef(b BitmapRef) {
	buf := a.data[b.Offset : b.Offset+bitmapRecordSize]
	binary.LittleEndian.PutUint64(buf[0:], b.GenomeOff)
	binary.LittleEndian.PutUint64(buf[8:], b.SizeWords)
	binary.LittleEndian.PutUint64(buf[16:], b.ArrayOffset)
	binary.LittleEndian.PutUint64(buf[24:], b.StartMask)
	binary.LittleEndian.PutUint64(buf[32:], b.EndMask)
	binary.LittleEndian.PutUint64(buf[40:], b.Next)
}

// PutBitmap commits a finished bitmap for (genome, chromosome). There
// may be at most one stored bitmap per (sample, chromosome) pair.
func (a *Arena) PutBitmap(g GenomeRef, c ChromosomeRef, bm *bitmap.Bitmap) error {
	if _, ok := a.GetBitmap(g, c); ok {
		return tsterr.New(tsterr.BuildNoWrite, "bitmap already stored for this sample/chromosome")
	}
	words := bm.Words()
	arrayOff, err := a.Allocate(uint64(len(words)) * 8)
	if err != nil {
		return err
	}
	for i, w := range words {
		binary.LittleEndian.PutUint64(a.data[arrayOff+uint64(i)*8:], w)
	}
	recOff, err := a.Allocate(bitmapRecordSize)
	if err != nil {
		return err
	}
	// c may be stale if a growth occurred between the caller's load
	// and this call; re-read it fresh.
	c = a.decodeChromosome(c.Offset)
	rec := BitmapRef{
		Offset:      recOff,
		GenomeOff:   g.Offset,
		SizeWords:   uint64(len(words)),
		ArrayOffset: arrayOff,
		StartMask:   bm.StartMask(),
		EndMask:     bm.EndMask(),
		Next:        c.BitmapsHead,
	}
	a.encodeBitmapRef(rec)
	c.BitmapsHead = recOff
	a.encodeChromosome(c)
	return nil
}

// GetBitmap looks up the stored bitmap for (genome, chromosome), if
// any. The returned bitmap is a view directly over mapped storage.
func (a *Arena) GetBitmap(g GenomeRef, c ChromosomeRef) (*bitmap.Bitmap, bool) {
	for off := a.decodeChromosome(c.Offset).BitmapsHead; off != 0; {
		rec := a.decodeBitmapRef(off)
		if rec.GenomeOff == g.Offset {
			words := make([]uint64, rec.SizeWords)
			for i := range words {
				words[i] = binary.LittleEndian.Uint64(a.data[rec.ArrayOffset+uint64(i)*8:])
			}
			return bitmap.FromWords(words, rec.StartMask, rec.EndMask), true
		}
		off = rec.Next
	}
	return nil, false
}
