// Package vcf implements the minimal VCF text cursor INGEST consumes:
// a stream of (chromosome, position, ref, alt, genotype) records in
// file order, decoupled from the k-way merge logic itself.
//
// This is a boundary concern, not part of the compressed-bitmap core,
// but a runnable database build needs something to read. Gzip-wrapped
// input is transparently supported via klauspost/pgzip, matching the
// teacher's own VCF/FASTA ingestion path.
package vcf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"

	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

// Record is one data line of a VCF file, already split into its fixed
// columns plus the per-sample genotype strings in FORMAT/GT order.
type Record struct {
	Chromosome string
	Position   uint32
	Ref        string
	Alt        []string // one or more comma-separated ALT alleles
	Genotypes  []string // raw GT field per sample, same order as Samples()
}

// Cursor reads VCF records from a stream in file order. It does not
// buffer the whole file: each call to Next reads exactly one line.
type Cursor struct {
	scanner *bufio.Scanner
	samples []string
	gtIndex int // index of GT within FORMAT, -1 if not found on this line
	err     error
}

// Open wraps r as a VCF cursor, transparently degzipping if the stream
// starts with the gzip magic bytes.
func Open(r io.Reader) (*Cursor, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	peek, err := br.Peek(2)
	if err == nil && len(peek) == 2 && peek[0] == 0x1f && peek[1] == 0x8b {
		gz, err := pgzip.NewReader(br)
		if err != nil {
			return nil, tsterr.Wrap(tsterr.VcfParseFailed, "gzip header", err)
		}
		r = gz
	} else {
		r = br
	}
	c := &Cursor{scanner: bufio.NewScanner(r)}
	c.scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	if err := c.readHeader(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cursor) readHeader() error {
	for c.scanner.Scan() {
		line := c.scanner.Text()
		if strings.HasPrefix(line, "##") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			cols := strings.Split(line, "\t")
			if len(cols) > 9 {
				c.samples = append(c.samples, cols[9:]...)
			}
			return nil
		}
		return tsterr.New(tsterr.VcfParseFailed, "missing #CHROM header line")
	}
	if err := c.scanner.Err(); err != nil {
		return tsterr.Wrap(tsterr.VcfParseFailed, "reading header", err)
	}
	return tsterr.New(tsterr.VcfParseFailed, "empty VCF stream")
}

// Samples returns the sample names in column order, as declared by the
// #CHROM header line.
func (c *Cursor) Samples() []string { return c.samples }

// Next advances to the next data line and returns it. io.EOF signals a
// clean end of stream.
func (c *Cursor) Next() (Record, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Record{}, tsterr.Wrap(tsterr.VcfParseFailed, "reading record", err)
		}
		return Record{}, io.EOF
	}
	line := c.scanner.Text()
	if line == "" {
		return c.Next()
	}
	cols := strings.Split(line, "\t")
	if len(cols) < 8 {
		return Record{}, tsterr.New(tsterr.VcfParseFailed, "short record: "+line)
	}
	pos, err := strconv.ParseUint(cols[1], 10, 32)
	if err != nil {
		return Record{}, tsterr.Wrap(tsterr.VcfParseFailed, "bad POS", err)
	}
	rec := Record{
		Chromosome: cols[0],
		Position:   uint32(pos),
		Ref:        cols[3],
		Alt:        strings.Split(cols[4], ","),
	}
	if len(cols) > 9 {
		gtIdx := 0
		for i, f := range strings.Split(cols[8], ":") {
			if f == "GT" {
				gtIdx = i
				break
			}
		}
		rec.Genotypes = make([]string, len(cols)-9)
		for i, sampleCol := range cols[9:] {
			fields := strings.Split(sampleCol, ":")
			if gtIdx < len(fields) {
				rec.Genotypes[i] = fields[gtIdx]
			}
		}
	}
	return rec, nil
}

// CalledAlleles parses a raw GT field (e.g. "0/1", "1|1", "./.") into
// the set of distinct non-reference 1-based ALT indices it calls, and
// reports whether the call is homozygous for a single non-ref allele.
func CalledAlleles(gt string) (alts []int, homozygous bool, err error) {
	if gt == "" || gt == "." {
		return nil, false, nil
	}
	sep := "/"
	if strings.Contains(gt, "|") {
		sep = "|"
	}
	parts := strings.Split(gt, sep)
	seen := map[int]int{}
	order := []int{}
	for _, p := range parts {
		if p == "." {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false, errors.Wrap(err, "bad genotype field "+gt)
		}
		if n == 0 {
			continue
		}
		if seen[n] == 0 {
			order = append(order, n)
		}
		seen[n]++
	}
	if len(order) == 0 {
		return nil, false, nil
	}
	homozygous = len(order) == 1 && seen[order[0]] == len(parts)
	return order, homozygous, nil
}
