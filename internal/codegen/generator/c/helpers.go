package cgen

import (
	"strings"
	"text/template"

	"github.com/exmachina-dev/CANopenNode/internal/codegen/meta"
)

// infoLine is one key/value row of the FILE INFO and DEVICE INFO blocks.
type infoLine struct {
	Key   string
	Value string
}

func tplFuncs(md *meta.Metadata) template.FuncMap {
	return template.FuncMap{
		"ref":    func() string { return md.Reference },
		"lines":  lines,
		"indent": indent,
		"upper":  strings.ToUpper,
		"pad":    pad,
	}
}

// lines joins fragments one per line.
func lines(fragments []string) string {
	return strings.Join(fragments, "\n")
}

func pad(width int, s string) string {
	if n := width - len(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func indent(spaces int, s string) string {
	prefix := strings.Repeat(" ", spaces)
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		if p != "" {
			parts[i] = prefix + p
		}
	}
	return strings.Join(parts, "\n")
}
