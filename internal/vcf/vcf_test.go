package vcf

import (
	"io"
	"strings"
	"testing"

	"gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type vcfSuite struct{}

var _ = check.Suite(&vcfSuite{})

const sample = `##fileformat=VCFv4.2
##contig=<ID=chr1>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2
chr1	100	.	A	G	.	.	.	GT	0/1	1/1
chr1	150	.	G	T,C	.	.	.	GT	1/2	0/0
`

func (s *vcfSuite) TestReadRecords(c *check.C) {
	cur, err := Open(strings.NewReader(sample))
	c.Assert(err, check.IsNil)
	c.Assert(cur.Samples(), check.DeepEquals, []string{"S1", "S2"})

	r1, err := cur.Next()
	c.Assert(err, check.IsNil)
	c.Assert(r1.Chromosome, check.Equals, "chr1")
	c.Assert(r1.Position, check.Equals, uint32(100))
	c.Assert(r1.Ref, check.Equals, "A")
	c.Assert(r1.Alt, check.DeepEquals, []string{"G"})
	c.Assert(r1.Genotypes, check.DeepEquals, []string{"0/1", "1/1"})

	r2, err := cur.Next()
	c.Assert(err, check.IsNil)
	c.Assert(r2.Alt, check.DeepEquals, []string{"T", "C"})

	_, err = cur.Next()
	c.Assert(err, check.Equals, io.EOF)
}

func (s *vcfSuite) TestCalledAlleles(c *check.C) {
	alts, homo, err := CalledAlleles("0/1")
	c.Assert(err, check.IsNil)
	c.Assert(alts, check.DeepEquals, []int{1})
	c.Assert(homo, check.Equals, false)

	alts, homo, err = CalledAlleles("1/1")
	c.Assert(err, check.IsNil)
	c.Assert(alts, check.DeepEquals, []int{1})
	c.Assert(homo, check.Equals, true)

	alts, homo, err = CalledAlleles("1/2")
	c.Assert(err, check.IsNil)
	c.Assert(alts, check.DeepEquals, []int{1, 2})
	c.Assert(homo, check.Equals, false)

	alts, _, err = CalledAlleles("0/0")
	c.Assert(err, check.IsNil)
	c.Assert(alts, check.IsNil)

	alts, _, err = CalledAlleles("./.")
	c.Assert(err, check.IsNil)
	c.Assert(alts, check.IsNil)
}
