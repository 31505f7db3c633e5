// Command tersect builds and queries a compressed variant-membership
// database: one bit per (sample, catalogued variant), grouped per
// chromosome, supporting set algebra, region slicing, and pairwise
// Hamming distance.
package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var handler = multi{
	"build":   &buildCmd{},
	"view":    &viewCmd{},
	"chroms":  &chromsCmd{},
	"samples": &samplesCmd{},
	"dist":    &distCmd{},
	"rename":  &renameCmd{},
	"dump":    &dumpCmd{},
	"help":    helpCmd{},
}

func main() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		logrus.StandardLogger().Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}
	os.Exit(handler.RunCommand(os.Args[0], os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
