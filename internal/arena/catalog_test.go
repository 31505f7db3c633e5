package arena

import (
	"path/filepath"
	"testing"

	"gopkg.in/check.v1"

	"github.com/tjkurowski/tersect-go/internal/bitmap"
)

func Test(t *testing.T) { check.TestingT(t) }

type catalogSuite struct {
	dir string
}

var _ = check.Suite(&catalogSuite{})

func (s *catalogSuite) SetUpTest(c *check.C) {
	s.dir = c.MkDir()
}

func (s *catalogSuite) openFresh(c *check.C, name string) *Arena {
	a, err := Create(filepath.Join(s.dir, name), false)
	c.Assert(err, check.IsNil)
	return a
}

func (s *catalogSuite) TestAddChromosomeAndGenome(c *check.C) {
	a := s.openFresh(c, "db1")
	defer a.Close()

	variants := []Variant{{Position: 100}, {Position: 150}}
	chrom, err := a.AddChromosome("chr1", variants, 200)
	c.Assert(err, check.IsNil)
	c.Assert(chrom.VariantCount, check.Equals, uint32(2))

	_, err = a.AddChromosome("chr1", nil, 0)
	c.Assert(err, check.NotNil)

	g1, err := a.AddGenome("sampleA")
	c.Assert(err, check.IsNil)
	_, err = a.AddGenome("sampleA")
	c.Assert(err, check.NotNil)

	got, ok := a.GenomeByName("sampleA")
	c.Assert(ok, check.Equals, true)
	c.Assert(got.Offset, check.Equals, g1.Offset)
}

func (s *catalogSuite) TestBuildOpenEnumeratesSamples(c *check.C) {
	path := filepath.Join(s.dir, "db2")
	a, err := Create(path, false)
	c.Assert(err, check.IsNil)
	_, err = a.AddGenome("A")
	c.Assert(err, check.IsNil)
	_, err = a.AddGenome("B")
	c.Assert(err, check.IsNil)
	c.Assert(a.Close(), check.IsNil)

	a2, err := Open(path)
	c.Assert(err, check.IsNil)
	defer a2.Close()
	names := map[string]bool{}
	for _, g := range a2.Genomes() {
		names[a2.GenomeName(g)] = true
	}
	c.Assert(names, check.DeepEquals, map[string]bool{"A": true, "B": true})
}

func (s *catalogSuite) TestPutAndGetBitmap(c *check.C) {
	a := s.openFresh(c, "db3")
	defer a.Close()

	chrom, err := a.AddChromosome("chr1", []Variant{{Position: 100}, {Position: 150}}, 200)
	c.Assert(err, check.IsNil)
	g, err := a.AddGenome("A")
	c.Assert(err, check.IsNil)

	bm := bitmap.New()
	c.Assert(bm.SetBit(0), check.IsNil)
	bm.Shrinkwrap()

	c.Assert(a.PutBitmap(g, chrom, bm), check.IsNil)
	got, ok := a.GetBitmap(g, chrom)
	c.Assert(ok, check.Equals, true)
	c.Assert(got.SetIndices(), check.DeepEquals, []uint64{0})

	// duplicate store for the same (sample, chromosome) is rejected.
	c.Assert(a.PutBitmap(g, chrom, bm), check.NotNil)
}

func (s *catalogSuite) TestRenamePreservesBitmap(c *check.C) {
	path := filepath.Join(s.dir, "db4")
	a, err := Create(path, false)
	c.Assert(err, check.IsNil)
	chrom, err := a.AddChromosome("chr1", []Variant{{Position: 100}}, 100)
	c.Assert(err, check.IsNil)
	g, err := a.AddGenome("old")
	c.Assert(err, check.IsNil)
	bm := bitmap.New()
	c.Assert(bm.SetBit(0), check.IsNil)
	bm.Shrinkwrap()
	c.Assert(a.PutBitmap(g, chrom, bm), check.IsNil)

	c.Assert(a.RenameGenome("old", "new"), check.IsNil)
	_, ok := a.GenomeByName("old")
	c.Assert(ok, check.Equals, false)
	c.Assert(a.Close(), check.IsNil)

	a2, err := Open(path)
	c.Assert(err, check.IsNil)
	defer a2.Close()
	g2, ok := a2.GenomeByName("new")
	c.Assert(ok, check.Equals, true)
	c2, ok := a2.ChromosomeByName("chr1")
	c.Assert(ok, check.Equals, true)
	got, ok := a2.GetBitmap(g2, c2)
	c.Assert(ok, check.Equals, true)
	c.Assert(got.SetIndices(), check.DeepEquals, []uint64{0})
}
