package generator

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/exmachina-dev/CANopenNode/internal/codegen/common"
	cgen "github.com/exmachina-dev/CANopenNode/internal/codegen/generator/c"
	"github.com/exmachina-dev/CANopenNode/internal/codegen/meta"
	"github.com/exmachina-dev/CANopenNode/internal/log"
	"github.com/exmachina-dev/CANopenNode/internal/od"

	"github.com/fxamacker/cbor/v2"
	yaml "gopkg.in/yaml.v3"
)

// Options select what a run produces.
type Options struct {
	// OutputDir receives CO<ref>_OD.h and CO<ref>_OD.c; empty writes both to the
	// generator's stdout.
	OutputDir    string
	Reference    string
	LenientRange bool
	// Debug dumps the assembled fragment lists in DumpFormat instead of rendering.
	Debug      bool
	DumpFormat string
}

type Generator struct {
	logger    *slog.Logger
	stdout    io.Writer
	fragments log.FragmentLogger
}

// Dumper encodes the layout for --debug.
type Dumper func(w io.Writer, l *cgen.Layout) error

var dumpers = map[string]Dumper{
	"yaml": dumpYAML,
	"json": dumpJSON,
	"cbor": dumpCBOR,
}

// DumpFormats lists the supported --dump-format values.
func DumpFormats() []string {
	var out []string
	for k := range dumpers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func New(logger *slog.Logger, stdout io.Writer, fragments log.FragmentLogger) *Generator {
	if fragments == nil {
		fragments = log.NewFragment(nil)
	}
	return &Generator{
		logger:    logger,
		stdout:    stdout,
		fragments: fragments,
	}
}

// Prepare resolves features and validates combined runs, returning the
// read-only metadata the C generator works from.
func (g *Generator) Prepare(d *od.Directory, opts Options) (*meta.Metadata, error) {
	a, err := od.Resolve(d, g.logger)
	if err != nil {
		return nil, fmt.Errorf("resolve features: %w", err)
	}
	if err := od.Validate(d, a, g.logger); err != nil {
		return nil, fmt.Errorf("validate dictionary: %w", err)
	}

	createdBy, err := common.CreatedBy()
	if err != nil {
		return nil, err
	}

	return &meta.Metadata{
		Directory:    d,
		Assignments:  a,
		Reference:    opts.Reference,
		LenientRange: opts.LenientRange,
		CreatedBy:    createdBy,
	}, nil
}

// Run drives the whole pipeline for d.
func (g *Generator) Run(d *od.Directory, opts Options) error {
	md, err := g.Prepare(d, opts)
	if err != nil {
		return err
	}

	if opts.Debug {
		format := opts.DumpFormat
		if format == "" {
			format = "yaml"
		}
		dump, ok := dumpers[format]
		if !ok {
			return fmt.Errorf("unsupported dump format '%s' (supported: %v)", format, DumpFormats())
		}
		l, err := cgen.Assemble(g.logger, md)
		if err != nil {
			return fmt.Errorf("assemble layout: %w", err)
		}
		g.logFragments(l)
		return dump(g.stdout, l)
	}

	g.logger.Info("Generating object dictionary",
		"entries", d.Len(), "features", len(d.FeatureNames()), "reference", opts.Reference)
	l, err := cgen.Assemble(g.logger, md)
	if err != nil {
		return fmt.Errorf("assemble layout: %w", err)
	}
	g.logFragments(l)

	art, err := cgen.Render(md, l)
	if err != nil {
		return err
	}
	g.logger.Debug("Rendered artifacts",
		"header", art.HeaderName, "header_blake2b", cgen.Digest(art.Header),
		"source", art.SourceName, "source_blake2b", cgen.Digest(art.Source))

	if opts.OutputDir == "" {
		_, err := art.WriteTo(g.stdout)
		return err
	}
	if err := art.WriteDir(g.logger, opts.OutputDir); err != nil {
		return err
	}
	g.logger.Info("Object dictionary generation complete", "output", opts.OutputDir)
	return nil
}

func (g *Generator) logFragments(l *cgen.Layout) {
	l.Fragments(func(list string, fragments []string) {
		for _, f := range fragments {
			g.fragments.Log(list, f)
		}
	})
}

func dumpYAML(w io.Writer, l *cgen.Layout) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func dumpJSON(w io.Writer, l *cgen.Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// dumpEncMode encodes layout dumps deterministically.
var dumpEncMode cbor.EncMode

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	dumpEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create dump CBOR encoder mode: %v", err))
	}
}

func dumpCBOR(w io.Writer, l *cgen.Layout) error {
	if err := dumpEncMode.NewEncoder(w).Encode(l); err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	return nil
}
