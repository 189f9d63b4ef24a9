package cgen

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/exmachina-dev/CANopenNode/internal/codegen/meta"
	"golang.org/x/crypto/blake2b"
)

// Artifacts are the rendered header and source files.
type Artifacts struct {
	HeaderName string
	SourceName string
	Header     []byte
	Source     []byte
}

// Generate assembles the layout of md and renders both files.
func Generate(logger *slog.Logger, md *meta.Metadata) (*Artifacts, error) {
	l, err := Assemble(logger, md)
	if err != nil {
		return nil, fmt.Errorf("assemble layout: %w", err)
	}
	logger.Debug("Assembled layout",
		"ram", len(l.RAM.Definitions), "eeprom", len(l.EEPROM.Definitions), "rom", len(l.ROM.Definitions),
		"records", len(l.Records), "rows", len(l.Rows))

	a, err := Render(md, l)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// WriteDir writes both files into dir, creating it if needed. A file whose
// content is unchanged is left alone so its mtime does not trigger rebuilds.
func (a *Artifacts) WriteDir(logger *slog.Logger, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, f := range []struct {
		kind string
		name string
		data []byte
	}{
		{"header", a.HeaderName, a.Header},
		{"source", a.SourceName, a.Source},
	} {
		out := filepath.Join(dir, f.name)
		sum := Digest(f.data)
		if existing, err := os.ReadFile(out); err == nil && Digest(existing) == sum {
			logger.Info("C "+f.kind+" unchanged", "file", out, "blake2b", sum)
			continue
		}
		if err := os.WriteFile(out, f.data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.kind, err)
		}
		logger.Info("Generated C "+f.kind, "file", out, "blake2b", sum)
	}
	return nil
}

// Digest returns the hex blake2b-256 sum of b.
func Digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// WriteTo writes the header followed by the source to w.
func (a *Artifacts) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, b := range [][]byte{a.Header, a.Source} {
		n, err := w.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
