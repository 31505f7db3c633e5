// Package vcfout renders query results back to standard VCF 4.x: fixed
// 8-column records with no genotype column, per spec §6.
package vcfout

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/bitmap"
)

const header = "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

// WriteRecords writes one VCF line per set bit in bm, in ordinal
// order, resolving each ordinal's ref/alt against chromosome c's
// variant table. bm's set indices are absolute ordinals into c's
// variant table, regardless of what region bm was sliced from.
func WriteRecords(w io.Writer, db *arena.Arena, c arena.ChromosomeRef, bm *bitmap.Bitmap) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(header); err != nil {
		return err
	}
	variants := db.Variants(c)
	name := db.ChromosomeName(c)
	for _, ordinal := range bm.SetIndices() {
		if ordinal >= uint64(len(variants)) {
			continue
		}
		v := variants[ordinal]
		ref, alt := resolve(db, v)
		fmt.Fprintf(bw, "%s\t%d\t.\t%s\t%s\t.\t.\t.\n", name, v.Position, ref, alt)
	}
	return bw.Flush()
}

func resolve(db *arena.Arena, v arena.Variant) (ref, alt string) {
	if r, a, ok := v.Kind.Bases(); ok {
		return string(r), string(a)
	}
	payload := db.Allele(v.AlleleOffset)
	for i := 0; i < len(payload); i++ {
		if payload[i] == '\t' {
			return payload[:i], payload[i+1:]
		}
	}
	return payload, ""
}
