// Package query implements the set-expression AST over sample
// identifiers and its evaluator: the AST is combined with arena-backed
// bitmaps and bitmap.Region/set-op combinators to answer a query
// against a single chromosome region.
package query

import (
	"strconv"
	"strings"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/bitmap"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

// Op identifies a binary set operator.
type Op int

const (
	Intersection Op = iota
	Union
	Difference
	SymmetricDifference
)

// Node is one AST node: either a binary operator over two children, or
// a leaf naming a single sample.
type Node struct {
	Op       Op
	Left     *Node
	Right    *Node
	Genome   string // leaf only
	IsLeaf   bool
}

// Leaf constructs a GenomeLeaf node.
func Leaf(sample string) *Node { return &Node{IsLeaf: true, Genome: sample} }

// Binary constructs an internal node.
func Binary(op Op, left, right *Node) *Node { return &Node{Op: op, Left: left, Right: right} }

// SubtreeFromList builds a left-leaning binary tree
// ((g1 op g2) op g3) ... op gn from a flat list, as used by list-style
// operators in the set-expression grammar.
func SubtreeFromList(op Op, genomes []string) *Node {
	if len(genomes) == 0 {
		return nil
	}
	root := Leaf(genomes[0])
	for _, g := range genomes[1:] {
		root = Binary(op, root, Leaf(g))
	}
	return root
}

// handle is a bitmap reference tagged with whether the evaluator owns
// its storage (and so must not try to free a borrowed arena view as
// though it were allocated memory -- in Go this distinction only
// matters for documentation/intent, since both cases are garbage
// collected, but it is kept explicit to mirror the ownership
// discipline spec'd for the evaluator).
type handle struct {
	bm     *bitmap.Bitmap
	owned  bool
}

// Eval evaluates root against region on chromosome c, resolving leaf
// sample names through db. The chromosome's variant ordinal space
// bounds region.
func Eval(db *arena.Arena, c arena.ChromosomeRef, root *Node, region bitmap.Interval) (*bitmap.Bitmap, error) {
	if root == nil {
		return nil, tsterr.New(tsterr.NoQuery, "empty query")
	}
	h, err := eval(db, c, root, region)
	if err != nil {
		return nil, err
	}
	return h.bm, nil
}

func eval(db *arena.Arena, c arena.ChromosomeRef, n *Node, region bitmap.Interval) (handle, error) {
	if n.IsLeaf {
		g, ok := db.GenomeByName(n.Genome)
		if !ok {
			return handle{}, tsterr.New(tsterr.NoSuchSample, n.Genome)
		}
		if region.End < region.Start { // region.EmptyInterval sentinel: no variants in range
			return handle{bm: bitmap.New(), owned: true}, nil
		}
		bm, ok := db.GetBitmap(g, c)
		if !ok {
			bm = bitmap.New()
			bm.Shrinkwrap()
		}
		sliced, err := bm.Region(region)
		if err != nil {
			return handle{}, err
		}
		return handle{bm: sliced, owned: false}, nil
	}

	left, err := eval(db, c, n.Left, region)
	if err != nil {
		return handle{}, err
	}
	right, err := eval(db, c, n.Right, region)
	if err != nil {
		return handle{}, err
	}

	var out *bitmap.Bitmap
	switch n.Op {
	case Intersection:
		out = bitmap.Intersect(left.bm, right.bm)
	case Union:
		out = bitmap.Union(left.bm, right.bm)
	case Difference:
		out = bitmap.Difference(left.bm, right.bm)
	case SymmetricDifference:
		out = bitmap.SymmetricDifference(left.bm, right.bm)
	}
	// left/right handles go out of scope here; borrowed (arena-view)
	// handles are simply dropped, owned (combinator-result) handles
	// are released the same way -- Go's GC reclaims both uniformly,
	// but only the owned ones ever held storage not shared with the
	// arena's mapping.
	return handle{bm: out, owned: true}, nil
}

// MatchWildcard reports whether name matches a glob pattern using only
// '*' as a wildcard, matched as ordered substrings with a trailing
// segment required to match the name's suffix.
func MatchWildcard(pattern, name string) bool {
	if pattern == "" {
		return name == ""
	}
	segments := strings.Split(pattern, "*")
	anchoredStart := !strings.HasPrefix(pattern, "*")
	anchoredEnd := !strings.HasSuffix(pattern, "*")

	pos := 0
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if i == 0 && anchoredStart {
			if !strings.HasPrefix(name[pos:], seg) {
				return false
			}
			pos += len(seg)
			continue
		}
		if i == len(segments)-1 && anchoredEnd {
			return strings.HasSuffix(name[pos:], seg)
		}
		idx := strings.Index(name[pos:], seg)
		if idx < 0 {
			return false
		}
		pos += idx + len(seg)
	}
	return true
}

// ContainsQuery reports whether every CHR:POS:REF:ALT site in spec is
// set in the sample's bitmap for that site's chromosome. An unknown
// site causes the whole match to fail (yield false), per spec's
// contract that unknown variants shrink the match set, not error it.
func ContainsQuery(db *arena.Arena, genome string, spec []string) (bool, error) {
	g, ok := db.GenomeByName(genome)
	if !ok {
		return false, tsterr.New(tsterr.NoSuchSample, genome)
	}
	for _, item := range spec {
		parts := strings.Split(item, ":")
		if len(parts) != 4 {
			return false, nil
		}
		chrom, posStr, ref, alt := parts[0], parts[1], parts[2], parts[3]
		c, ok := db.ChromosomeByName(chrom)
		if !ok {
			return false, nil
		}
		ordinal, ok := findOrdinal(db, c, posStr, ref, alt)
		if !ok {
			return false, nil
		}
		bm, ok := db.GetBitmap(g, c)
		if !ok {
			return false, nil
		}
		set := false
		for _, idx := range bm.SetIndices() {
			if idx == ordinal {
				set = true
				break
			}
		}
		if !set {
			return false, nil
		}
	}
	return true, nil
}

func findOrdinal(db *arena.Arena, c arena.ChromosomeRef, posStr, ref, alt string) (uint64, bool) {
	pos, err := strconv.ParseUint(posStr, 10, 32)
	if err != nil {
		return 0, false
	}
	for i, v := range db.Variants(c) {
		if uint64(v.Position) != pos {
			continue
		}
		r, a, ok := v.Kind.Bases()
		if ok {
			if len(ref) == 1 && len(alt) == 1 && r == ref[0] && a == alt[0] {
				return uint64(i), true
			}
			continue
		}
		if db.Allele(v.AlleleOffset) == ref+"\t"+alt {
			return uint64(i), true
		}
	}
	return 0, false
}
