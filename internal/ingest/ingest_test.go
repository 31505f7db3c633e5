package ingest

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/check.v1"

	"github.com/tjkurowski/tersect-go/internal/arena"
)

func Test(t *testing.T) { check.TestingT(t) }

type ingestSuite struct{}

var _ = check.Suite(&ingestSuite{})

const vcfX = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	A
chr1	100	.	A	G	.	.	.	GT	0/1
`

const vcfY = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	B
chr1	100	.	A	G	.	.	.	GT	0/1
chr1	150	.	G	T	.	.	.	GT	0/1
`

func (s *ingestSuite) TestScenario2KWayMerge(c *check.C) {
	db, err := arena.Create(filepath.Join(c.MkDir(), "db"), false)
	c.Assert(err, check.IsNil)
	defer db.Close()

	readers := []io.Reader{strings.NewReader(vcfX), strings.NewReader(vcfY)}
	stats, err := Build(db, readers, Filter{})
	c.Assert(err, check.IsNil)
	c.Assert(stats.Chromosomes, check.Equals, 1)
	c.Assert(stats.Variants, check.Equals, 2)
	c.Assert(stats.Samples, check.Equals, 2)

	chrom, ok := db.ChromosomeByName("chr1")
	c.Assert(ok, check.Equals, true)
	variants := db.Variants(chrom)
	c.Assert(len(variants), check.Equals, 2)
	c.Assert(variants[0].Position, check.Equals, uint32(100))
	c.Assert(variants[1].Position, check.Equals, uint32(150))

	gA, ok := db.GenomeByName("A")
	c.Assert(ok, check.Equals, true)
	gB, ok := db.GenomeByName("B")
	c.Assert(ok, check.Equals, true)

	bmA, ok := db.GetBitmap(gA, chrom)
	c.Assert(ok, check.Equals, true)
	c.Assert(bmA.SetIndices(), check.DeepEquals, []uint64{0})

	bmB, ok := db.GetBitmap(gB, chrom)
	c.Assert(ok, check.Equals, true)
	c.Assert(bmB.SetIndices(), check.DeepEquals, []uint64{0, 1})
}

func (s *ingestSuite) TestDuplicateSampleRejected(c *check.C) {
	db, err := arena.Create(filepath.Join(c.MkDir(), "db"), false)
	c.Assert(err, check.IsNil)
	defer db.Close()

	readers := []io.Reader{strings.NewReader(vcfX), strings.NewReader(vcfX)}
	_, err = Build(db, readers, Filter{})
	c.Assert(err, check.NotNil)
}

func (s *ingestSuite) TestHomozygousOnlyFilter(c *check.C) {
	db, err := arena.Create(filepath.Join(c.MkDir(), "db"), false)
	c.Assert(err, check.IsNil)
	defer db.Close()

	readers := []io.Reader{strings.NewReader(vcfX)}
	_, err = Build(db, readers, Filter{HomozygousOnly: true})
	c.Assert(err, check.IsNil)

	// the canonical variant table records the site regardless of
	// genotype filtering; A is heterozygous (0/1) there, so with
	// homozygous-only filtering its bit is never set and no bitmap is
	// stored for it at all.
	chrom, ok := db.ChromosomeByName("chr1")
	c.Assert(ok, check.Equals, true)
	c.Assert(chrom.VariantCount, check.Equals, uint32(1))
	gA, ok := db.GenomeByName("A")
	c.Assert(ok, check.Equals, true)
	_, ok = db.GetBitmap(gA, chrom)
	c.Assert(ok, check.Equals, false)
}
