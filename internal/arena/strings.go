package arena

import "encoding/binary"

// putString bump-allocates a length-prefixed (u32) byte string and
// returns its offset.
func (a *Arena) putString(s string) (uint64, error) {
	n := uint64(4 + len(s))
	off, err := a.Allocate(n)
	if err != nil {
		return 0, err
	}
	binary.LittleEndian.PutUint32(a.data[off:], uint32(len(s)))
	copy(a.data[off+4:], s)
	return off, nil
}

// getString reads a length-prefixed string at off. off==0 denotes "no
// string" and returns "".
func (a *Arena) getString(off uint64) string {
	if off == 0 {
		return ""
	}
	n := binary.LittleEndian.Uint32(a.data[off:])
	return string(a.data[off+4 : off+4+uint64(n)])
}

// InternAllele returns the offset of the stored "REF\tALT" payload for
// an indel, appending a fresh copy only the first time a given payload
// is seen during this build session. The intern table is transient
// (spec §4.2): it is never persisted, only rebuilt per ingest.
func (a *Arena) InternAllele(refAlt string) (uint64, error) {
	if off, ok := a.internTable[refAlt]; ok {
		return off, nil
	}
	off, err := a.putString(refAlt)
	if err != nil {
		return 0, err
	}
	a.internTable[refAlt] = off
	return off, nil
}

// Allele resolves an interned "REF\tALT" string back from its offset.
func (a *Arena) Allele(off uint64) string { return a.getString(off) }
