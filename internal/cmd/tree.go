package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/exmachina-dev/CANopenNode/internal/loader"
	"github.com/exmachina-dev/CANopenNode/internal/od"

	"golang.org/x/term"
)

// descriptionWidth is the description cut when stdout is not a terminal.
const descriptionWidth = 33

const descriptionPrefix = "│  │      "

// Tree prints every entry with its description and children.
type Tree struct {
	File string `help:"Object dictionary description to read" short:"f" required:"" type:"existingfile" env:"ODE_FILE"`
}

func (t *Tree) WritesStdout() bool { return true }

// Run is called by Kong when the tree command is executed.
func (t *Tree) Run(logger *slog.Logger) error {
	d, err := loader.LoadFile(t.File, logger)
	if err != nil {
		return err
	}
	return WriteTree(os.Stdout, d, terminalDescriptionWidth(os.Stdout))
}

// WriteTree writes the tree of d, cutting descriptions after width runes.
func WriteTree(w io.Writer, d *od.Directory, width int) error {
	var b strings.Builder
	for _, e := range d.Entries() {
		fmt.Fprintf(&b, "├─ %-6s %s\n", fmt.Sprintf("%#x", e.Index), e)
		if desc := firstLine(e.Description); desc != "" {
			fmt.Fprintf(&b, "%s%s\n", descriptionPrefix, truncate(desc, width))
		}
		for _, c := range e.Children() {
			fmt.Fprintf(&b, "│  ├─ %-4s  %s\n", fmt.Sprintf("%#x", c.Subindex), c)
		}
		b.WriteString("│\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func terminalDescriptionWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return descriptionWidth
	}
	cols, _, err := term.GetSize(fd)
	if err != nil {
		return descriptionWidth
	}
	return max(cols-len([]rune(descriptionPrefix)), descriptionWidth)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
