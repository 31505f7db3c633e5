// Package ingest implements the k-way merge that turns N sorted VCF
// streams into a database's canonical per-chromosome variant tables
// and per-sample membership bitmaps.
//
// Each stream must present one chromosome at a time in a single
// contiguous run; a stream that re-enters a chromosome it has already
// closed out is rejected (see spec §9's open question on this, decided
// in DESIGN.md: we validate rather than trust the input).
package ingest

import (
	"container/heap"
	"io"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/bitmap"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
	"github.com/tjkurowski/tersect-go/internal/vcf"
)

// Types selects which variant kinds a build records.
type Types int

const (
	AllTypes Types = iota
	SNVOnly
	IndelOnly
)

// Filter configures genotype-call acceptance during ingest.
type Filter struct {
	HomozygousOnly bool
	Types          Types
}

func (f Filter) accepts(ref, alt string) bool {
	isIndel := len(ref) != 1 || len(alt) != 1
	switch f.Types {
	case SNVOnly:
		return !isIndel
	case IndelOnly:
		return isIndel
	default:
		return true
	}
}

// site is one expanded (position, ref, alt) candidate from a stream's
// current VCF record, carrying which of that record's samples call it
// and whether each call is homozygous.
type site struct {
	pos   uint32
	ref   string
	alt   string
	calls []bool // per local sample index within the owning stream; true if that sample calls this alt
}

type streamSource struct {
	cursor       *vcf.Cursor
	samples      []string
	genomes      []arena.GenomeRef
	pending      []site // expanded sites for the stream's current VCF record, ascending by alt
	chromsSeen   map[string]bool
	currentChrom string
	atEOF        bool
	filter       Filter
}

func newStreamSource(r io.Reader) (*streamSource, error) {
	c, err := vcf.Open(r)
	if err != nil {
		return nil, err
	}
	return &streamSource{cursor: c, samples: c.Samples(), chromsSeen: map[string]bool{}}, nil
}

func (s *streamSource) expand(rec vcf.Record, f Filter) []site {
	byAlt := map[string][]bool{} // alt -> per-sample called?
	order := make([]string, 0, len(rec.Alt))
	for _, a := range rec.Alt {
		if a == "" || a == "." {
			continue
		}
		if _, ok := byAlt[a]; !ok {
			byAlt[a] = make([]bool, len(s.samples))
			order = append(order, a)
		}
	}
	for si, gt := range rec.Genotypes {
		altIdx, homozygous, err := vcf.CalledAlleles(gt)
		if err != nil || len(altIdx) == 0 {
			continue
		}
		if f.HomozygousOnly && !homozygous {
			continue
		}
		for _, idx := range altIdx {
			if idx < 1 || idx > len(rec.Alt) {
				continue
			}
			a := rec.Alt[idx-1]
			if calls, ok := byAlt[a]; ok {
				calls[si] = true
			}
		}
	}
	// descending alphabetical push order so a LIFO pop yields ascending.
	sort.Sort(sort.Reverse(sort.StringSlice(order)))
	stack := make([]site, 0, len(order))
	for _, a := range order {
		if !f.accepts(rec.Ref, a) {
			continue
		}
		stack = append(stack, site{pos: rec.Position, ref: rec.Ref, alt: a, calls: byAlt[a]})
	}
	out := make([]site, len(stack))
	for i := range stack {
		out[i] = stack[len(stack)-1-i]
	}
	return out
}

// heap element: one live stream, positioned at the head of its
// pending queue for the chromosome currently being merged.
type mergeHeap struct {
	streams []*streamSource
	idx     []int // indices into streams, the live set
}

func (h *mergeHeap) Len() int { return len(h.idx) }
func (h *mergeHeap) Less(i, j int) bool {
	a, b := h.streams[h.idx[i]].pending[0], h.streams[h.idx[j]].pending[0]
	if a.pos != b.pos {
		return a.pos < b.pos
	}
	if a.ref != b.ref {
		return a.ref < b.ref
	}
	return a.alt < b.alt
}
func (h *mergeHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }
func (h *mergeHeap) Push(x interface{}) { h.idx = append(h.idx, x.(int)) }
func (h *mergeHeap) Pop() interface{} {
	n := len(h.idx)
	x := h.idx[n-1]
	h.idx = h.idx[:n-1]
	return x
}

// Stats summarizes one ingest run, for CLI progress reporting.
type Stats struct {
	Chromosomes int
	Variants    int
	Samples     int
}

// Build reads every stream to completion, writing the resulting
// catalog and bitmaps into db. Streams are consumed in the order
// given; io.EOF from a stream's underlying reader is not an error.
func Build(db *arena.Arena, readers []io.Reader, f Filter) (Stats, error) {
	streams := make([]*streamSource, len(readers))
	seenSampleNames := map[string]bool{}
	for i, r := range readers {
		s, err := newStreamSource(r)
		if err != nil {
			return Stats{}, err
		}
		s.filter = f
		for _, name := range s.samples {
			if seenSampleNames[name] {
				return Stats{}, tsterr.New(tsterr.DuplicateSample, name)
			}
			seenSampleNames[name] = true
			g, err := db.AddGenome(name)
			if err != nil {
				return Stats{}, err
			}
			s.genomes = append(s.genomes, g)
		}
		streams[i] = s
	}

	var stats Stats
	stats.Samples = len(seenSampleNames)

	for {
		chrom, any, err := advanceToNextChromosome(streams)
		if err != nil {
			return stats, err
		}
		if !any {
			break
		}
		n, err := mergeOneChromosome(db, streams, chrom, f)
		if err != nil {
			return stats, err
		}
		stats.Chromosomes++
		stats.Variants += n
		log.WithField("chromosome", chrom).WithField("variants", n).Info("chromosome committed")
	}
	return stats, nil
}

// advanceToNextChromosome reads ahead on every stream not already
// positioned on a still-open chromosome, returning the lexically
// smallest chromosome name among those with data remaining. Streams
// are expected to present each chromosome in one contiguous run;
// re-entering a chromosome already closed out is rejected.
func advanceToNextChromosome(streams []*streamSource) (string, bool, error) {
	names := map[string]bool{}
	for _, s := range streams {
		if s.atEOF {
			continue
		}
		if len(s.pending) == 0 {
			if err := s.readRecord(); err != nil {
				if err == io.EOF {
					s.atEOF = true
					continue
				}
				return "", false, err
			}
		}
		if len(s.pending) > 0 {
			names[s.currentChrom] = true
		}
	}
	if len(names) == 0 {
		return "", false, nil
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	return sorted[0], true, nil
}

// readRecord advances the stream by one VCF line, expanding it into
// s.pending, skipping lines with no expandable (accepted) alt.
func (s *streamSource) readRecord() error {
	for {
		rec, err := s.cursor.Next()
		if err != nil {
			return err
		}
		if s.currentChrom != "" && rec.Chromosome != s.currentChrom && s.chromsSeen[rec.Chromosome] {
			return tsterr.New(tsterr.VcfParseFailed, "chromosome "+rec.Chromosome+" is not contiguous in input")
		}
		s.currentChrom = rec.Chromosome
		s.chromsSeen[rec.Chromosome] = true
		expanded := s.expand(rec, s.filter)
		if len(expanded) > 0 {
			s.pending = expanded
			return nil
		}
	}
}

// mergeOneChromosome drains every stream's contribution to chrom and
// commits the resulting variant table and sample bitmaps.
func mergeOneChromosome(db *arena.Arena, streams []*streamSource, chrom string, f Filter) (int, error) {
	h := &mergeHeap{streams: streams}
	for i, s := range streams {
		if !s.atEOF && len(s.pending) > 0 && s.currentChrom == chrom {
			h.idx = append(h.idx, i)
		}
	}
	heap.Init(h)

	var variants []arena.Variant
	touched := map[uint64]*bitmap.Bitmap{} // genome offset -> building bitmap
	order := []uint64{}
	genomeByOffset := map[uint64]arena.GenomeRef{}

	var prevPos uint32
	var prevRef, prevAlt string
	havePrev := false
	maxPos := uint32(0)

	bitmapFor := func(g arena.GenomeRef) *bitmap.Bitmap {
		bm, ok := touched[g.Offset]
		if !ok {
			bm = bitmap.New()
			touched[g.Offset] = bm
			order = append(order, g.Offset)
			genomeByOffset[g.Offset] = g
		}
		return bm
	}

	for h.Len() > 0 {
		top := h.idx[0]
		s := streams[top]
		cur := s.pending[0]
		if cur.pos > maxPos {
			maxPos = cur.pos
		}

		ordinal := len(variants) - 1
		isNew := !havePrev || cur.pos != prevPos || cur.ref != prevRef || cur.alt != prevAlt
		if isNew {
			kind, ok := snvKind(cur.ref, cur.alt)
			v := arena.Variant{Position: cur.pos}
			if ok {
				v.Kind = kind
			} else {
				off, err := db.InternAllele(cur.ref + "\t" + cur.alt)
				if err != nil {
					return 0, err
				}
				v.Kind = arena.Indel
				v.AlleleOffset = off
			}
			variants = append(variants, v)
			ordinal = len(variants) - 1
			prevPos, prevRef, prevAlt, havePrev = cur.pos, cur.ref, cur.alt, true
		}

		for localIdx, called := range cur.calls {
			if !called {
				continue
			}
			g := s.genomes[localIdx]
			bm := bitmapFor(g)
			if err := bm.SetBit(uint64(ordinal)); err != nil {
				return 0, err
			}
		}

		s.pending = s.pending[1:]
		if len(s.pending) == 0 {
			if err := s.readRecord(); err == nil && s.currentChrom == chrom {
				heap.Fix(h, 0)
				continue
			} else if err != nil && err != io.EOF {
				return 0, err
			} else if err == io.EOF {
				s.atEOF = true
			}
			// stream exhausted, or moved on to a new chromosome: drop it.
			heap.Remove(h, 0)
			continue
		}
		heap.Fix(h, 0)
	}

	c, err := db.AddChromosome(chrom, variants, maxPos)
	if err != nil {
		return 0, err
	}
	for _, off := range order {
		bm := touched[off]
		bm.Shrinkwrap()
		if len(variants) > 0 {
			sliced, err := bm.Region(bitmap.Interval{Start: 0, End: uint64(len(variants)) - 1})
			if err != nil {
				return 0, err
			}
			if err := db.PutBitmap(genomeByOffset[off], c, sliced); err != nil {
				return 0, err
			}
		} else if err := db.PutBitmap(genomeByOffset[off], c, bm); err != nil {
			return 0, err
		}
	}
	return len(variants), nil
}

func snvKind(ref, alt string) (arena.VariantKind, bool) {
	if len(ref) != 1 || len(alt) != 1 {
		return arena.Indel, false
	}
	ref = strings.ToUpper(ref)
	alt = strings.ToUpper(alt)
	return arena.SNVKind(ref[0], alt[0])
}
