package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/exmachina-dev/CANopenNode/internal/codegen/generator"
	"github.com/exmachina-dev/CANopenNode/internal/loader"
	"github.com/exmachina-dev/CANopenNode/internal/log"
)

// GenerateFiles compiles an object dictionary description into CO<ref>_OD.h and CO<ref>_OD.c.
type GenerateFiles struct {
	File         string `help:"Object dictionary description to read" short:"f" required:"" type:"existingfile" env:"ODE_FILE"`
	Debug        bool   `help:"Dump the assembled fragment lists instead of rendering the files" short:"d" env:"ODE_DEBUG"`
	DumpFormat   string `help:"Format of the --debug dump: yaml, json or cbor" enum:"yaml,json,cbor" default:"yaml" env:"ODE_DUMP_FORMAT"`
	Output       string `help:"Directory the files are written to (stdout when empty)" type:"path" env:"ODE_OUTPUT"`
	Reference    string `help:"Reference inserted into file, struct and macro names" env:"ODE_REFERENCE"`
	LenientRange bool   `help:"Accept integer defaults one past the type maximum" env:"ODE_LENIENT_RANGE"`
}

// WritesStdout reports whether the files or the --debug dump go to stdout.
func (g *GenerateFiles) WritesStdout() bool { return g.Output == "" || g.Debug }

// Run is called by Kong when the generate_files command is executed.
func (g *GenerateFiles) Run(logger *slog.Logger, fragments log.FragmentLogger) error {
	return g.run(logger, fragments, os.Stdout)
}

func (g *GenerateFiles) run(logger *slog.Logger, fragments log.FragmentLogger, stdout io.Writer) error {
	d, err := loader.LoadFile(g.File, logger)
	if err != nil {
		return err
	}

	gen := generator.New(logger, stdout, fragments)
	return gen.Run(d, generator.Options{
		OutputDir:    g.Output,
		Reference:    g.Reference,
		LenientRange: g.LenientRange,
		Debug:        g.Debug,
		DumpFormat:   g.DumpFormat,
	})
}
