package main

import (
	"flag"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/tjkurowski/tersect-go/internal/arena"
)

type renameCmd struct{}

func (renameCmd) RunCommand(prog string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
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
	if *dbPath == "" || len(rest) != 2 {
		fmt.Fprintln(stderr, "usage: rename -db FILE OLD_NAME NEW_NAME")
		return 2
	}
	db, err := arena.Open(*dbPath)
	if err != nil {
		return fail(stderr, err)
	}
	defer db.Close()

	if err := db.RenameGenome(rest[0], rest[1]); err != nil {
		return fail(stderr, err)
	}
	log.WithField("old", rest[0]).WithField("new", rest[1]).Info("renamed sample")
	return 0
}
