// Command mpcc compiles a JSON-encoded AST into MASM-dialect assembly text.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/EndlessCheng/mpython/compiler"
	"github.com/EndlessCheng/mpython/masmwriter"
	"github.com/EndlessCheng/mpython/mpast"
)

var debug bool

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

func outputName(in, out string) string {
	if out != "" {
		return out
	}
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + ".asm"
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one input file", 1)
	}
	inFile := c.Args().First()

	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return errors.Wrap(err, "parse log level")
	}
	logger := logrus.New()
	logger.SetLevel(level)

	src, err := os.ReadFile(inFile)
	if err != nil {
		return errors.Wrapf(err, "read %s", inFile)
	}
	mod, err := mpast.DecodeModule(src)
	if err != nil {
		return errors.Wrapf(err, "decode AST from %s", inFile)
	}

	prog, err := compiler.New(
		compiler.EntryLabel(c.String("entry")),
		compiler.WithLogger(logger),
		compiler.Verbose(c.Bool("debug")),
	)
	if err != nil {
		return err
	}
	if err := prog.Compile(mod); err != nil {
		return errors.Wrapf(err, "compile %s", inFile)
	}

	outFile := outputName(inFile, c.String("o"))
	f, err := os.Create(outFile)
	if err != nil {
		return errors.Wrapf(err, "create %s", outFile)
	}
	defer f.Close()

	w := masmwriter.New(f, masmwriter.Optimize(!c.Bool("no-optimize")))
	if err := prog.WriteTo(w); err != nil {
		return errors.Wrapf(err, "write %s", outFile)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:      "mpcc",
		Usage:     "compile a restricted-Python AST to 16-bit real-mode MASM assembly",
		ArgsUsage: "<ast.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "o", Usage: "output `filename` (defaults to the input name with .asm)"},
			&cli.StringFlag{Name: "entry", Value: "start", Usage: "program entry label"},
			&cli.BoolFlag{Name: "no-optimize", Usage: "disable the peephole optimizer"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "logrus level: debug, info, warn, error"},
			&cli.BoolFlag{Name: "debug", Usage: "print full error stack traces and per-instruction codegen diagnostics (the diagnostics show only with -log-level debug)", Destination: &debug},
		},
		Action: run,
	}
	atExit(app.Run(os.Args))
}
