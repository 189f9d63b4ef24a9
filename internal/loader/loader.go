// Package loader reads an object dictionary description from an INI file.
//
// Section names select what a section describes:
//
//	[feature.<NAME>]      a feature (keys: value, associated_objects)
//	[DeviceInfo]          free-form device information
//	[FileInfo]            FileName, FileVersion, CreationTime, CreationDate, CreatedBy
//	[<index>]             a top-level entry, index in hex
//	[<index>.<subindex>]  a child of the entry at index
//
// Keys of the DEFAULT section apply to every entry section that does not set them.
package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/exmachina-dev/CANopenNode/internal/od"
	"gopkg.in/ini.v1"
)

const featurePrefix = "feature."

// Section is one named section of the input file, in file order.
type Section struct {
	Name string
	Keys od.RawSection
	// Order lists the keys as they appear in the file.
	Order []string
}

// entryKeys maps lower-cased key names to the names od.NewEntry expects.
var entryKeys = func() map[string]string {
	m := map[string]string{}
	for _, k := range []string{
		"name", "description", "object_type", "data_type", "access_type", "memory_type",
		"default", "value", "disabled", "PDO_mapping", "TPDO_detect_COS",
		"access_function_name", "access_function_precode", "access_function_postcode", "length",
	} {
		m[strings.ToLower(k)] = k
	}
	return m
}()

// Parse reads every section of an INI document. Python-style indented
// continuation lines are joined with newlines; ';' and '#' inside values are
// kept since access function code is C.
func Parse(r io.Reader) ([]Section, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("parse ini: %w", err)
	}

	var out []Section
	for _, sec := range cfg.Sections() {
		s := Section{Name: sec.Name(), Keys: od.RawSection{}}
		for _, k := range sec.Keys() {
			s.Keys[k.Name()] = k.Value()
			s.Order = append(s.Order, k.Name())
		}
		if s.Name == ini.DefaultSection && len(s.Keys) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadFile parses the file at path and builds its directory.
func LoadFile(path string, logger *slog.Logger) (*od.Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sections, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Parsed input file", "file", path, "sections", len(sections))
	return Build(sections, logger)
}

// Build turns sections into a directory: features first, then the info
// sections, then top-level entries, then children. A child whose parent is
// missing is logged and skipped.
func Build(sections []Section, logger *slog.Logger) (*od.Directory, error) {
	d := od.NewDirectory()

	var defaults od.RawSection
	for _, s := range sections {
		if s.Name == ini.DefaultSection {
			defaults = s.Keys
		}
	}

	for _, s := range sections {
		if !strings.HasPrefix(strings.ToLower(s.Name), featurePrefix) {
			continue
		}
		f, err := buildFeature(s.Name[len(featurePrefix):], s.Keys)
		if err != nil {
			return nil, fmt.Errorf("section [%s]: %w", s.Name, err)
		}
		if err := d.Add(f); err != nil {
			return nil, fmt.Errorf("section [%s]: %w", s.Name, err)
		}
	}

	var children []Section
	for _, s := range sections {
		switch {
		case s.Name == ini.DefaultSection, strings.HasPrefix(strings.ToLower(s.Name), featurePrefix):
		case strings.EqualFold(s.Name, "DeviceInfo"):
			fillInfo(&d.Device, s)
		case strings.EqualFold(s.Name, "FileInfo"):
			fillInfo(&d.File, s)
		case strings.Contains(s.Name, "."):
			children = append(children, s)
		default:
			index, err := od.ParseIndex(s.Name, 16)
			if err != nil {
				logger.Warn("Unknown section, skipping", "section", s.Name)
				continue
			}
			e, err := od.NewEntry(uint16(index), entryFields(s, defaults, logger))
			if err != nil {
				return nil, fmt.Errorf("section [%s]: %w", s.Name, err)
			}
			if err := d.Add(e); err != nil {
				return nil, fmt.Errorf("section [%s]: %w", s.Name, err)
			}
		}
	}

	for _, s := range children {
		idx, sub, _ := strings.Cut(s.Name, ".")
		index, err := od.ParseIndex(idx, 16)
		if err != nil {
			logger.Warn("Unknown section, skipping", "section", s.Name)
			continue
		}
		subindex, err := od.ParseIndex(sub, 8)
		if err != nil {
			logger.Warn("Unknown section, skipping", "section", s.Name)
			continue
		}
		parent, ok := d.Entry(uint16(index))
		if !ok {
			logger.Warn("Missing index in dictionary, skipping object", "index", fmt.Sprintf("0x%04x", index), "section", s.Name)
			continue
		}
		if _, err := parent.AddChild(uint8(subindex), entryFields(s, defaults, logger)); err != nil {
			return nil, fmt.Errorf("section [%s]: %w", s.Name, err)
		}
	}

	logger.Debug("Built directory", "entries", d.Len(), "objects", d.Count(), "features", len(d.FeatureNames()))
	return d, nil
}

// entryFields canonicalizes key names and applies DEFAULT keys.
func entryFields(s Section, defaults od.RawSection, logger *slog.Logger) od.RawSection {
	out := od.RawSection{}
	add := func(k, v string, warn bool) {
		name, ok := entryKeys[strings.ToLower(k)]
		if !ok {
			if warn {
				logger.Warn("Unknown key, ignoring", "section", s.Name, "key", k)
			}
			return
		}
		if _, set := out[name]; !set {
			out[name] = v
		}
	}
	for k, v := range s.Keys {
		add(k, v, true)
	}
	for k, v := range defaults {
		add(k, v, false)
	}
	return out
}

func fillInfo(info *od.Info, s Section) {
	order := s.Order
	if len(order) == 0 {
		order = sortedKeys(s.Keys)
	}
	for _, k := range order {
		info.Set(k, s.Keys[k])
	}
}
