package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/query"
)

type samplesCmd struct{}

func (samplesCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	dbPath := flags.String("db", "", "database `file`")
	match := flags.String("match", "", "only list samples whose name matches `PATTERN` (glob, '*' only)")
	contains := flags.String("contains", "", "only list samples containing every site in `CHR:POS:REF:ALT,...`")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *dbPath == "" {
		fmt.Fprintln(stderr, "usage: samples -db FILE [-match PATTERN] [-contains LIST]")
		return 2
	}
	db, err := arena.Open(*dbPath)
	if err != nil {
		return fail(stderr, err)
	}
	defer db.Close()

	var containsSpec []string
	if *contains != "" {
		containsSpec = strings.Split(*contains, ",")
	}

	for _, g := range db.Genomes() {
		name := db.GenomeName(g)
		if *match != "" && !query.MatchWildcard(*match, name) {
			continue
		}
		if len(containsSpec) > 0 {
			ok, err := query.ContainsQuery(db, name, containsSpec)
			if err != nil {
				return fail(stderr, err)
			}
			if !ok {
				continue
			}
		}
		fmt.Fprintln(stdout, name)
	}
	return 0
}
