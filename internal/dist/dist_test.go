package dist

import (
	"bytes"
	"path/filepath"
	"testing"

	"gopkg.in/check.v1"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/bitmap"
)

func Test(t *testing.T) { check.TestingT(t) }

type distSuite struct{}

var _ = check.Suite(&distSuite{})

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

func (s *distSuite) TestScenario4DistanceMatrix(c *check.C) {
	db, chrom := setupScenario2(c)
	defer db.Close()

	m, err := Region(db, chrom, bitmap.Interval{Start: 0, End: 1}, []string{"A", "B"}, []string{"A", "B"})
	c.Assert(err, check.IsNil)
	c.Assert(m.Symmetric, check.Equals, true)
	c.Assert(m.D, check.DeepEquals, [][]uint64{{0, 1}, {1, 0}})
}

func (s *distSuite) TestAsymmetricUsesJSON(c *check.C) {
	db, chrom := setupScenario2(c)
	defer db.Close()

	m, err := Region(db, chrom, bitmap.Interval{Start: 0, End: 1}, []string{"A"}, []string{"B"})
	c.Assert(err, check.IsNil)
	c.Assert(m.Symmetric, check.Equals, false)
	c.Assert(m.D[0][0], check.Equals, uint64(1))

	var buf bytes.Buffer
	c.Assert(WriteJSON(&buf, m), check.IsNil)
	c.Assert(buf.Len() > 0, check.Equals, true)
}

func (s *distSuite) TestPhylipOutput(c *check.C) {
	db, chrom := setupScenario2(c)
	defer db.Close()
	m, err := Region(db, chrom, bitmap.Interval{Start: 0, End: 1}, []string{"A", "B"}, []string{"A", "B"})
	c.Assert(err, check.IsNil)

	var buf bytes.Buffer
	c.Assert(WritePhylip(&buf, m), check.IsNil)
	c.Assert(buf.String() != "", check.Equals, true)
}

func (s *distSuite) TestMDSProjectsSymmetricMatrix(c *check.C) {
	db, chrom := setupScenario2(c)
	defer db.Close()
	m, err := Region(db, chrom, bitmap.Interval{Start: 0, End: 1}, []string{"A", "B"}, []string{"A", "B"})
	c.Assert(err, check.IsNil)

	proj, err := MDS(m, 2)
	c.Assert(err, check.IsNil)
	c.Assert(proj.Names, check.DeepEquals, []string{"A", "B"})
	c.Assert(len(proj.Coords), check.Equals, 2)
}
