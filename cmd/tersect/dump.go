package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/tjkurowski/tersect-go/internal/arena"
)

// dumpCmd walks the arena's catalog directly, bypassing the query
// evaluator -- useful for verifying §3's invariants by hand and, with
// -verify, for checking that every stored bitmap's word array hashes
// the same way on repeated reads (a basic tamper/corruption check,
// since the file format carries no per-record checksum of its own).
type dumpCmd struct{}

func (dumpCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	dbPath := flags.String("db", "", "database `file`")
	verify := flags.Bool("verify", false, "print a blake2b content hash per stored bitmap")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *dbPath == "" {
		fmt.Fprintln(stderr, "usage: dump -db FILE [-verify]")
		return 2
	}
	db, err := arena.Open(*dbPath)
	if err != nil {
		return fail(stderr, err)
	}
	defer db.Close()

	for _, c := range db.Chromosomes() {
		fmt.Fprintf(stdout, "chromosome %q length=%d variants=%d\n", db.ChromosomeName(c), c.Length, c.VariantCount)
	}
	for _, g := range db.Genomes() {
		name := db.GenomeName(g)
		fmt.Fprintf(stdout, "genome %q\n", name)
		if !*verify {
			continue
		}
		for _, c := range db.Chromosomes() {
			bm, ok := db.GetBitmap(g, c)
			if !ok {
				continue
			}
			fmt.Fprintf(stdout, "  %s: %s\n", db.ChromosomeName(c), hashWords(bm.Words()))
		}
	}
	return 0
}

func hashWords(words []uint64) string {
	buf := make([]byte, 8*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	sum := blake2b.Sum256(buf)
	return fmt.Sprintf("%x", sum[:8])
}
