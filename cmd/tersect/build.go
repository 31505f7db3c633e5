package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/ingest"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

type buildCmd struct{}

func (buildCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	output := flags.String("o", "", "output database `file`")
	force := flags.Bool("force", false, "overwrite an existing database file")
	homozygous := flags.Bool("homozygous", false, "record only homozygous-alt calls")
	types := flags.String("types", "both", "variant types to record: snvs, indels, or both")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *output == "" {
		fmt.Fprintln(stderr, "build: -o output file is required")
		return tsterr.BuildNoOutput.Code()
	}
	inputs := flags.Args()
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "build: at least one input VCF file is required")
		return tsterr.BuildNoInputs.Code()
	}

	var filterTypes ingest.Types
	switch *types {
	case "snvs":
		filterTypes = ingest.SNVOnly
	case "indels":
		filterTypes = ingest.IndelOnly
	default:
		filterTypes = ingest.AllTypes
	}

	db, err := arena.Create(*output, *force)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if te, ok := tsterr.As(err); ok {
			return te.Kind.Code()
		}
		return 1
	}
	defer db.Close()

	readers := make([]io.Reader, len(inputs))
	for i, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return tsterr.BuildNoInputs.Code()
		}
		defer f.Close()
		readers[i] = f
	}

	log.WithField("inputs", len(readers)).Info("starting build")
	stats, err := ingest.Build(db, readers, ingest.Filter{HomozygousOnly: *homozygous, Types: filterTypes})
	if err != nil {
		fmt.Fprintln(stderr, err)
		if te, ok := tsterr.As(err); ok {
			return te.Kind.Code()
		}
		return 1
	}
	log.WithField("chromosomes", stats.Chromosomes).
		WithField("variants", stats.Variants).
		WithField("samples", stats.Samples).
		Info("build complete")
	return 0
}
