package bitmap

import (
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type bitmapSuite struct{}

var _ = check.Suite(&bitmapSuite{})

func build(c *check.C, indices []uint64) *Bitmap {
	b := New()
	for _, i := range indices {
		err := b.SetBit(i)
		c.Assert(err, check.IsNil)
	}
	b.Shrinkwrap()
	return b
}

func (s *bitmapSuite) TestPopcountRoundTrip(c *check.C) {
	indices := []uint64{0, 1, 2, 63, 64, 65, 200, 1000, 1001, 5000}
	b := build(c, indices)
	c.Check(b.Weight(), check.Equals, uint64(len(indices)))
	c.Check(b.SetIndices(), check.DeepEquals, indices)
}

func (s *bitmapSuite) TestSetBitSparse(c *check.C) {
	indices := []uint64{5, 100000, 100001, 300000}
	b := build(c, indices)
	c.Check(b.SetIndices(), check.DeepEquals, indices)
	c.Check(b.Weight(), check.Equals, uint64(4))
}

func (s *bitmapSuite) TestAppendOutOfOrder(c *check.C) {
	b := New()
	c.Assert(b.SetBit(10), check.IsNil)
	err := b.SetBit(9)
	c.Assert(err, check.NotNil)
	_, ok := err.(*ErrAppendOutOfOrder)
	c.Check(ok, check.Equals, true)
}

func (s *bitmapSuite) TestRegionIdempotence(c *check.C) {
	b := build(c, []uint64{10, 20, 30, 200, 201, 5000})
	r1, err := b.Region(Interval{Start: 0, End: 300})
	c.Assert(err, check.IsNil)
	r2, err := r1.Region(Interval{Start: 0, End: 100})
	c.Assert(err, check.IsNil)
	direct, err := b.Region(Interval{Start: 0, End: 100})
	c.Assert(err, check.IsNil)
	c.Check(r2.Weight(), check.Equals, direct.Weight())
	c.Check(r2.SetIndices(), check.DeepEquals, direct.SetIndices())
}

func (s *bitmapSuite) TestMaskCorrectness(c *check.C) {
	b := build(c, []uint64{10, 20, 30, 200, 201, 5000, 5001, 9000})
	region := Interval{Start: 15, End: 5005}
	r, err := b.Region(region)
	c.Assert(err, check.IsNil)
	var want uint64
	for _, idx := range b.SetIndices() {
		if idx >= region.Start && idx <= region.End {
			want++
		}
	}
	c.Check(r.Weight(), check.Equals, want)
}

func (s *bitmapSuite) TestSetAlgebraLaws(c *check.C) {
	a := build(c, []uint64{1, 2, 5, 100, 101, 5000})
	b := build(c, []uint64{2, 3, 5, 101, 102, 5000, 6000})

	union1 := Union(a, b)
	union2 := Union(b, a)
	c.Check(union1.Weight(), check.Equals, union2.Weight())
	c.Check(union1.SetIndices(), check.DeepEquals, union2.SetIndices())

	inter1 := Intersect(a, b)
	inter2 := Intersect(b, a)
	c.Check(inter1.SetIndices(), check.DeepEquals, inter2.SetIndices())

	sym1 := SymmetricDifference(a, b)
	sym2 := SymmetricDifference(b, a)
	c.Check(sym1.SetIndices(), check.DeepEquals, sym2.SetIndices())

	// A \ A = empty
	diffSelf := Difference(a, a)
	c.Check(diffSelf.Weight(), check.Equals, uint64(0))

	// A △ A = empty
	symSelf := SymmetricDifference(a, a)
	c.Check(symSelf.Weight(), check.Equals, uint64(0))

	// A ∪ A = A ∩ A = A
	unionSelf := Union(a, a)
	interSelf := Intersect(a, a)
	c.Check(unionSelf.SetIndices(), check.DeepEquals, a.SetIndices())
	c.Check(interSelf.SetIndices(), check.DeepEquals, a.SetIndices())
}

func (s *bitmapSuite) TestHammingMatchesSymmetricDifferenceWeight(c *check.C) {
	a := build(c, []uint64{1, 2, 5, 100, 101, 5000, 9000})
	b := build(c, []uint64{2, 3, 5, 101, 102, 5000, 6000})
	c.Check(Distance(a, b), check.Equals, SymmetricDifference(a, b).Weight())
}

func (s *bitmapSuite) TestScenario2KWayMergeBitmaps(c *check.C) {
	// chr1 variants: (100,A,G) ordinal 0, (150,G,T) ordinal 1
	// sample A: only ordinal 0 set -> "10"
	// sample B: both ordinals set -> "11"
	a := build(c, []uint64{0})
	b := build(c, []uint64{0, 1})
	c.Check(Intersect(a, b).SetIndices(), check.DeepEquals, []uint64{0})
	c.Check(Difference(b, a).SetIndices(), check.DeepEquals, []uint64{1})
	c.Check(SymmetricDifference(a, b).SetIndices(), check.DeepEquals, []uint64{1})
	c.Check(Distance(a, b), check.Equals, uint64(1))
}
