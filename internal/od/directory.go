package od

import (
	"fmt"
	"slices"
)

// Info is an ordered list of key/value pairs describing the device or the
// source file.
type Info struct {
	Keys   []string
	Values map[string]string
}

// Set appends or replaces key.
func (i *Info) Set(key, value string) {
	if i.Values == nil {
		i.Values = map[string]string{}
	}
	if _, ok := i.Values[key]; !ok {
		i.Keys = append(i.Keys, key)
	}
	i.Values[key] = value
}

// Get returns the value stored under key, or "".
func (i *Info) Get(key string) string { return i.Values[key] }

// Directory is the object dictionary: entries keyed by index and features
// keyed by name. It is built once by the loader and is read-only afterwards.
type Directory struct {
	// Device holds the [DeviceInfo] section, File the [FileInfo] section.
	Device Info
	File   Info

	entries  map[uint16]*Entry
	features map[string]*Feature
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		entries:  map[uint16]*Entry{},
		features: map[string]*Feature{},
	}
}

// Add inserts an *Entry or a *Feature.
func (d *Directory) Add(v any) error {
	switch x := v.(type) {
	case *Entry:
		return d.AddEntry(x)
	case *Feature:
		return d.AddFeature(x)
	default:
		return newError(ErrType, NoIndex, NoIndex, "", "", fmt.Sprintf("cannot add %T to directory", v))
	}
}

// AddEntry inserts a top-level entry at its index.
func (d *Directory) AddEntry(e *Entry) error {
	if e == nil || e.IsChild() {
		return newError(ErrType, NoIndex, NoIndex, "", "", "only top-level entries can be added to a directory")
	}
	if prev, ok := d.entries[e.Index]; ok {
		return newError(ErrDuplicate, int(e.Index), NoIndex, e.Name, "", "index already used by "+quote(prev.Name))
	}
	d.entries[e.Index] = e
	return nil
}

// AddFeature inserts a feature under its name. Names that map to the same
// macro name collide.
func (d *Directory) AddFeature(f *Feature) error {
	if f == nil {
		return newError(ErrType, NoIndex, NoIndex, "", "", "nil feature")
	}
	for _, g := range d.features {
		if g.MacroName() == f.MacroName() {
			return newError(ErrDuplicate, NoIndex, NoIndex, f.Name, "", fmt.Sprintf("feature already exists as %q", g.Name))
		}
	}
	d.features[f.Name] = f
	return nil
}

// Entry returns the entry at index.
func (d *Directory) Entry(index uint16) (*Entry, bool) {
	e, ok := d.entries[index]
	return e, ok
}

// Feature returns the feature called name.
func (d *Directory) Feature(name string) (*Feature, bool) {
	f, ok := d.features[name]
	return f, ok
}

// Indices returns every entry index in ascending order.
func (d *Directory) Indices() []uint16 {
	out := make([]uint16, 0, len(d.entries))
	for k := range d.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Entries returns every top-level entry in index order.
func (d *Directory) Entries() []*Entry {
	indices := d.Indices()
	out := make([]*Entry, len(indices))
	for i, idx := range indices {
		out[i] = d.entries[idx]
	}
	return out
}

// FeatureNames returns the feature names, sorted.
func (d *Directory) FeatureNames() []string {
	names := make([]string, 0, len(d.features))
	for k := range d.features {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Features returns every feature ordered by name.
func (d *Directory) Features() []*Feature {
	names := d.FeatureNames()
	out := make([]*Feature, len(names))
	for i, n := range names {
		out[i] = d.features[n]
	}
	return out
}

// Len returns the number of top-level entries.
func (d *Directory) Len() int { return len(d.entries) }

// Count returns the number of objects, children included.
func (d *Directory) Count() int {
	n := len(d.entries)
	for _, e := range d.entries {
		n += e.NumChildren()
	}
	return n
}
