package query

import (
	"path/filepath"
	"testing"

	"gopkg.in/check.v1"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/bitmap"
)

func Test(t *testing.T) { check.TestingT(t) }

type querySuite struct{}

var _ = check.Suite(&querySuite{})

// setupScenario2 builds the spec's literal k-way-merge scenario
// directly against the catalog, bypassing ingest: chr1 variants
// [(100,A,G), (150,G,T)], bitmap(A) = "10", bitmap(B) = "11".
func setupScenario2(c *check.C) (*arena.Arena, arena.ChromosomeRef) {
	db, err := arena.Create(filepath.Join(c.MkDir(), "db"), false)
	c.Assert(err, check.IsNil)
	chrom, err := db.AddChromosome("chr1", []arena.Variant{{Position: 100}, {Position: 150}}, 150)
	c.Assert(err, check.IsNil)

	gA, err := db.AddGenome("A")
	c.Assert(err, check.IsNil)
	bmA := bitmap.New()
	c.Assert(bmA.SetBit(0), check.IsNil)
	bmA.Shrinkwrap()
	c.Assert(db.PutBitmap(gA, chrom, bmA), check.IsNil)

	gB, err := db.AddGenome("B")
	c.Assert(err, check.IsNil)
	bmB := bitmap.New()
	c.Assert(bmB.SetBit(0), check.IsNil)
	c.Assert(bmB.SetBit(1), check.IsNil)
	bmB.Shrinkwrap()
	c.Assert(db.PutBitmap(gB, chrom, bmB), check.IsNil)

	return db, chrom
}

func (s *querySuite) TestSetAlgebraScenario3(c *check.C) {
	db, chrom := setupScenario2(c)
	defer db.Close()
	region := bitmap.Interval{Start: 0, End: 1}

	inter, err := Eval(db, chrom, Binary(Intersection, Leaf("A"), Leaf("B")), region)
	c.Assert(err, check.IsNil)
	c.Assert(inter.SetIndices(), check.DeepEquals, []uint64{0})

	diff, err := Eval(db, chrom, Binary(Difference, Leaf("B"), Leaf("A")), region)
	c.Assert(err, check.IsNil)
	c.Assert(diff.SetIndices(), check.DeepEquals, []uint64{1})

	sym, err := Eval(db, chrom, Binary(SymmetricDifference, Leaf("A"), Leaf("B")), region)
	c.Assert(err, check.IsNil)
	c.Assert(sym.SetIndices(), check.DeepEquals, []uint64{1})
}

func (s *querySuite) TestUnknownSampleFails(c *check.C) {
	db, chrom := setupScenario2(c)
	defer db.Close()
	_, err := Eval(db, chrom, Leaf("nope"), bitmap.Interval{Start: 0, End: 1})
	c.Assert(err, check.NotNil)
}

func (s *querySuite) TestEmptyQueryFails(c *check.C) {
	db, chrom := setupScenario2(c)
	defer db.Close()
	_, err := Eval(db, chrom, nil, bitmap.Interval{Start: 0, End: 1})
	c.Assert(err, check.NotNil)
}

func (s *querySuite) TestMatchWildcard(c *check.C) {
	c.Assert(MatchWildcard("n*", "new"), check.Equals, true)
	c.Assert(MatchWildcard("n*", "old"), check.Equals, false)
	c.Assert(MatchWildcard("*abc", "xyzabc"), check.Equals, true)
	c.Assert(MatchWildcard("a*c", "abc"), check.Equals, true)
	c.Assert(MatchWildcard("a*c", "abd"), check.Equals, false)
	c.Assert(MatchWildcard("exact", "exact"), check.Equals, true)
	c.Assert(MatchWildcard("exact", "exactly"), check.Equals, false)
}

func (s *querySuite) TestContainsQuery(c *check.C) {
	db, _ := setupScenario2(c)
	defer db.Close()

	ok, err := ContainsQuery(db, "B", []string{"chr1:100:A:G", "chr1:150:G:T"})
	c.Assert(err, check.IsNil)
	c.Assert(ok, check.Equals, true)

	ok, err = ContainsQuery(db, "A", []string{"chr1:150:G:T"})
	c.Assert(err, check.IsNil)
	c.Assert(ok, check.Equals, false)

	ok, err = ContainsQuery(db, "A", []string{"chr1:999:A:G"})
	c.Assert(err, check.IsNil)
	c.Assert(ok, check.Equals, false)
}

func (s *querySuite) TestSubtreeFromList(c *check.C) {
	n := SubtreeFromList(Union, []string{"a", "b", "c"})
	c.Assert(n.IsLeaf, check.Equals, false)
	c.Assert(n.Op, check.Equals, Union)
	c.Assert(n.Right.Genome, check.Equals, "c")
	c.Assert(n.Left.Right.Genome, check.Equals, "b")
	c.Assert(n.Left.Left.Genome, check.Equals, "a")
}
