// Package region translates (chromosome, startBase, endBase) queries
// and bin sizes into variant-ordinal intervals against a chromosome's
// catalogued, position-sorted variant table.
package region

import (
	"strconv"
	"strings"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/bitmap"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

// Region is a parsed, resolved (chromosome, startBase, endBase) triple,
// 1-based and inclusive on both ends.
type Region struct {
	Chromosome string
	Start      uint32
	End        uint32
}

// Parse parses the external region grammar: "CHR" (whole chromosome)
// or "CHR:START-END" (inclusive). The chromosome name itself is not
// validated against any catalog here; callers resolve it via Ordinals.
func Parse(s string) (Region, error) {
	chrom, coords, hasCoords := cutLast(s, ":")
	if !hasCoords {
		return Region{Chromosome: s}, nil
	}
	parts := strings.SplitN(coords, "-", 2)
	if len(parts) != 2 {
		return Region{}, tsterr.New(tsterr.BadRegionBounds, s)
	}
	start, err1 := strconv.ParseUint(parts[0], 10, 32)
	end, err2 := strconv.ParseUint(parts[1], 10, 32)
	if err1 != nil || err2 != nil || end < start {
		return Region{}, tsterr.New(tsterr.BadRegionBounds, s)
	}
	return Region{Chromosome: chrom, Start: uint32(start), End: uint32(end)}, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// Ordinals resolves a Region against a chromosome's catalog: it scans
// the sorted variant table for the lowest ordinal with position >=
// startBase and the highest with position <= endBase. If r carries no
// explicit coordinates, the whole chromosome length is used.
func Ordinals(db *arena.Arena, r Region) (arena.ChromosomeRef, bitmap.Interval, error) {
	c, ok := db.ChromosomeByName(r.Chromosome)
	if !ok {
		return arena.ChromosomeRef{}, bitmap.Interval{}, tsterr.New(tsterr.NoSuchChromosome, r.Chromosome)
	}
	start, end := r.Start, r.End
	if start == 0 && end == 0 {
		start, end = 1, c.Length
	}
	if end < start {
		return arena.ChromosomeRef{}, bitmap.Interval{}, tsterr.New(tsterr.BadRegionBounds, r.Chromosome)
	}

	variants := db.Variants(c)
	var lo, hi = -1, -1
	for i, v := range variants {
		if v.Position >= start && lo == -1 {
			lo = i
		}
		if v.Position <= end {
			hi = i
		}
	}
	if lo == -1 || hi == -1 || hi < lo {
		return c, EmptyInterval, nil
	}
	return c, bitmap.Interval{Start: uint64(lo), End: uint64(hi)}, nil
}

// EmptyInterval is the sentinel ordinal interval denoting "no variants
// in range": its End is deliberately less than its Start, which
// bitmap.Region rejects, so callers must check
// IsEmpty before using an interval returned by this package.
var EmptyInterval = bitmap.Interval{Start: 1, End: 0}

// IsEmpty reports whether iv is the empty-range sentinel.
func IsEmpty(iv bitmap.Interval) bool { return iv.End < iv.Start }

// Bins partitions a Region into ceil((end-start+1)/binSize) consecutive
// bins, returning for each bin the variant ordinals it covers
// (EmptyInterval when it covers none). Ordinals are resolved once over
// the whole region and then split, rather than re-scanning per bin.
func Bins(db *arena.Arena, r Region, binSize uint32) (arena.ChromosomeRef, []bitmap.Interval, error) {
	if binSize == 0 {
		return arena.ChromosomeRef{}, nil, tsterr.New(tsterr.BadRegionBounds, "bin size must be positive")
	}
	c, ok := db.ChromosomeByName(r.Chromosome)
	if !ok {
		return arena.ChromosomeRef{}, nil, tsterr.New(tsterr.NoSuchChromosome, r.Chromosome)
	}
	start, end := r.Start, r.End
	if start == 0 && end == 0 {
		start, end = 1, c.Length
	}
	if end < start {
		return arena.ChromosomeRef{}, nil, tsterr.New(tsterr.BadRegionBounds, r.Chromosome)
	}
	nbins := int((uint64(end)-uint64(start)+1+uint64(binSize)-1) / uint64(binSize))

	variants := db.Variants(c)
	binOrdinals := make([][2]int, nbins)
	for i := range binOrdinals {
		binOrdinals[i] = [2]int{-1, -1}
	}
	for i, v := range variants {
		if v.Position < start || v.Position > end {
			continue
		}
		bin := int((v.Position - start) / binSize)
		if binOrdinals[bin][0] == -1 {
			binOrdinals[bin][0] = i
		}
		binOrdinals[bin][1] = i
	}
	out := make([]bitmap.Interval, nbins)
	for i, pair := range binOrdinals {
		if pair[0] == -1 {
			out[i] = EmptyInterval
			continue
		}
		out[i] = bitmap.Interval{Start: uint64(pair[0]), End: uint64(pair[1])}
	}
	return c, out, nil
}
