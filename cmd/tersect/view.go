package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/query"
	"github.com/tjkurowski/tersect-go/internal/region"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
	"github.com/tjkurowski/tersect-go/internal/vcfout"
)

type viewCmd struct{}

func (viewCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.SetOutput(stderr)
	dbPath := flags.String("db", "", "database `file`")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	rest := flags.Args()
	if *dbPath == "" || len(rest) < 2 {
		fmt.Fprintln(stderr, "usage: view -db FILE QUERY REGION")
		return 2
	}
	exprStr, regionStr := rest[0], rest[1]

	db, err := arena.Open(*dbPath)
	if err != nil {
		return fail(stderr, err)
	}
	defer db.Close()

	ast, err := parseExpr(db, exprStr)
	if err != nil {
		return fail(stderr, err)
	}
	r, err := region.Parse(regionStr)
	if err != nil {
		return fail(stderr, err)
	}
	c, iv, err := region.Ordinals(db, r)
	if err != nil {
		return fail(stderr, err)
	}
	if region.IsEmpty(iv) {
		return vcfoutEmpty(stdout, db, c)
	}
	result, err := query.Eval(db, c, ast, iv)
	if err != nil {
		return fail(stderr, err)
	}
	if err := vcfout.WriteRecords(stdout, db, c, result); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func vcfoutEmpty(stdout io.Writer, db *arena.Arena, c arena.ChromosomeRef) int {
	fmt.Fprintln(stdout, "##fileformat=VCFv4.2")
	fmt.Fprintln(stdout, "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO")
	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, err)
	if te, ok := tsterr.As(err); ok {
		return te.Kind.Code()
	}
	return 1
}
