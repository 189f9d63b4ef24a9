package loader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/exmachina-dev/CANopenNode/internal/od"
)

// buildFeature parses a feature section:
//
//	value = 4
//	associated_objects = 1400-1600, 1A00-1C00/2
//
// Each descriptor is BASE-MAX[/STEP] in hex, MAX exclusive.
func buildFeature(name string, keys od.RawSection) (*od.Feature, error) {
	value := 0
	if raw := strings.TrimSpace(lookup(keys, "value")); raw != "" {
		n, err := parseCount(raw)
		if err != nil {
			return nil, &od.Error{Kind: od.ErrValue, Index: od.NoIndex, Subindex: od.NoIndex, Name: name, Field: "value", Msg: err.Error()}
		}
		value = n
	}

	f, err := od.NewFeature(name, value)
	if err != nil {
		return nil, err
	}

	for _, raw := range strings.Split(lookup(keys, "associated_objects"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		base, limit, step, err := parseDescriptor(raw)
		if err != nil {
			return nil, &od.Error{Kind: err.kind, Index: od.NoIndex, Subindex: od.NoIndex, Name: name, Field: "associated_objects", Msg: err.msg}
		}
		if err := f.AddObject(base, limit, step); err != nil {
			return nil, err
		}
	}
	return f, nil
}

type descriptorError struct {
	kind error
	msg  string
}

func parseDescriptor(raw string) (base, limit, step int, derr *descriptorError) {
	bad := func(kind error, format string, args ...any) (int, int, int, *descriptorError) {
		return 0, 0, 0, &descriptorError{kind: kind, msg: fmt.Sprintf(format, args...)}
	}

	span, stepText, hasStep := strings.Cut(raw, "/")
	lo, hi, ok := strings.Cut(span, "-")
	if !ok {
		return bad(od.ErrValue, "bad descriptor %q, expected BASE-MAX[/STEP]", raw)
	}
	var err error
	if base, err = od.ParseIndex(lo, 16); err != nil {
		return bad(od.ErrValue, "bad base index in %q", raw)
	}
	if limit, err = od.ParseIndex(hi, 20); err != nil {
		return bad(od.ErrValue, "bad max index in %q", raw)
	}
	step = 1
	if hasStep {
		n, err := od.ParseIndex(stepText, 16)
		if err != nil {
			return bad(od.ErrValue, "bad step in %q", raw)
		}
		if n < 1 {
			return bad(od.ErrRange, "step %d must be at least 1", n)
		}
		step = n
	}
	return base, limit, step, nil
}

// parseCount accepts a non-negative decimal or 0x-prefixed hex count.
func parseCount(s string) (int, error) {
	base := 10
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s, base = rest, 16
	}
	n, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("bad count %q", s)
	}
	return int(n), nil
}

// lookup finds key case-insensitively.
func lookup(keys od.RawSection, key string) string {
	for k, v := range keys {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func sortedKeys(keys od.RawSection) []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
