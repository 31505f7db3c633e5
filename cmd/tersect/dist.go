package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/dist"
	"github.com/tjkurowski/tersect-go/internal/region"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

type distCmd struct{}

func (distCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	dbPath := flags.String("db", "", "database `file`")
	setB := flags.String("b", "", "comma-separated sample set B (default: same as A)")
	binSize := flags.Uint("bin-size", 0, "bin size in bases; requires a single region")
	asJSON := flags.Bool("json", false, "emit JSON instead of phylip")
	pca := flags.Bool("pca", false, "also emit a 2-D classical-MDS projection (symmetric, unbinned only)")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	rest := flags.Args()
	if *dbPath == "" || len(rest) < 2 {
		fmt.Fprintln(stderr, "usage: dist -db FILE SAMPLE_A,SAMPLE_A2,... REGION")
		return 2
	}
	setAStr, regionStr := rest[0], rest[1]
	setA := strings.Split(setAStr, ",")
	colSamples := setA
	if *setB != "" {
		colSamples = strings.Split(*setB, ",")
	}

	db, err := arena.Open(*dbPath)
	if err != nil {
		return fail(stderr, err)
	}
	defer db.Close()

	r, err := region.Parse(regionStr)
	if err != nil {
		return fail(stderr, err)
	}

	if *binSize > 0 && len(rest) > 2 {
		return fail(stderr, tsterr.New(tsterr.BinningRequiresSingleRegion, "binning requires exactly one region"))
	}

	if *binSize > 0 {
		c, bins, err := region.Bins(db, r, uint32(*binSize))
		if err != nil {
			return fail(stderr, err)
		}
		matrices, err := dist.Binned(db, c, bins, setA, colSamples)
		if err != nil {
			return fail(stderr, err)
		}
		if err := dist.WriteJSONBins(stdout, matrices); err != nil {
			return fail(stderr, err)
		}
		return 0
	}

	c, iv, err := region.Ordinals(db, r)
	if err != nil {
		return fail(stderr, err)
	}
	m, err := dist.Region(db, c, iv, setA, colSamples)
	if err != nil {
		return fail(stderr, err)
	}

	if *asJSON || !m.Symmetric {
		if err := dist.WriteJSON(stdout, m); err != nil {
			return fail(stderr, err)
		}
	} else if err := dist.WritePhylip(stdout, m); err != nil {
		return fail(stderr, err)
	}

	if *pca {
		if !m.Symmetric {
			fmt.Fprintln(stderr, "dist: -pca requires a symmetric distance matrix")
			return 2
		}
		proj, err := dist.MDS(m, 2)
		if err != nil {
			return fail(stderr, err)
		}
		for i, name := range proj.Names {
			fmt.Fprintf(stdout, "%s\t%.6f\t%.6f\n", name, proj.Coords[i][0], proj.Coords[i][1])
		}
	}
	return 0
}
