package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/exmachina-dev/CANopenNode/internal/loader"
	"github.com/exmachina-dev/CANopenNode/internal/od"
)

// Count prints how many objects, children included, a file describes.
type Count struct {
	File string `help:"Object dictionary description to read" short:"f" required:"" type:"existingfile" env:"ODE_FILE"`
}

func (c *Count) WritesStdout() bool { return true }

// Run is called by Kong when the count command is executed.
func (c *Count) Run(logger *slog.Logger) error {
	d, err := loader.LoadFile(c.File, logger)
	if err != nil {
		return err
	}
	return WriteCount(os.Stdout, d)
}

func WriteCount(w io.Writer, d *od.Directory) error {
	_, err := fmt.Fprintf(w, "Objects in this file: %d\n", d.Count())
	return err
}
