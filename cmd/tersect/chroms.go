package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/tjkurowski/tersect-go/internal/arena"
)

type chromsCmd struct{}

func (chromsCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	dbPath := flags.String("db", "", "database `file`")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *dbPath == "" {
		fmt.Fprintln(stderr, "usage: chroms -db FILE")
		return 2
	}
	db, err := arena.Open(*dbPath)
	if err != nil {
		return fail(stderr, err)
	}
	defer db.Close()

	for _, c := range db.Chromosomes() {
		fmt.Fprintf(stdout, "%s\t%d\t%d\n", db.ChromosomeName(c), c.Length, c.VariantCount)
	}
	return 0
}
