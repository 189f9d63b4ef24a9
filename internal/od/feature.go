package od

import (
	"fmt"
	"slices"
	"strings"
)

// MaxIndex is the exclusive upper bound of the dictionary index space.
const MaxIndex = 0x10000

// Descriptor is one associated-object range of a Feature: indices from Base
// up to, but not including, Max, taken every Step.
type Descriptor struct {
	Base int
	Max  int
	Step int
}

// Feature is a named repeat count shared by one or more index ranges. Entries
// covered by a feature form combined runs.
type Feature struct {
	Name  string
	Value int

	objects map[int]Descriptor
}

// NewFeature returns a feature with no associated objects.
func NewFeature(name string, value int) (*Feature, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(ErrValue, NoIndex, NoIndex, "", "name", "missing required field")
	}
	if value < 0 {
		return nil, newError(ErrValue, NoIndex, NoIndex, name, "value", fmt.Sprintf("negative repeat count %d", value))
	}
	return &Feature{Name: name, Value: value, objects: map[int]Descriptor{}}, nil
}

// AddObject associates the range [base, limit) stepped by step. A step of zero
// means 1.
func (f *Feature) AddObject(base, limit, step int) error {
	if step == 0 {
		step = 1
	}
	switch {
	case base < 0 || base >= MaxIndex:
		return newError(ErrRange, NoIndex, NoIndex, f.Name, "associated_objects", fmt.Sprintf("base index %#x out of range", base))
	case limit <= base:
		return newError(ErrRange, base, NoIndex, f.Name, "associated_objects", fmt.Sprintf("max index %#x must be greater than base index", limit))
	case step < 1:
		return newError(ErrRange, base, NoIndex, f.Name, "associated_objects", fmt.Sprintf("step %d must be at least 1", step))
	}
	if _, ok := f.objects[base]; ok {
		return newError(ErrDuplicate, base, NoIndex, f.Name, "associated_objects", "base index already associated")
	}
	d := Descriptor{Base: base, Max: limit, Step: step}
	if last := f.lastTerm(d); last >= MaxIndex {
		return newError(ErrRange, base, NoIndex, f.Name, "associated_objects", fmt.Sprintf("covered index %#x beyond 0xffff", last))
	}
	f.objects[base] = d
	return nil
}

func (f *Feature) lastTerm(d Descriptor) int {
	if f.Value > 0 {
		return d.Base + (f.Value-1)*d.Step
	}
	return d.Max - 1
}

// Descriptors returns the associated ranges ordered by base index.
func (f *Feature) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(f.objects))
	for _, d := range f.objects {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Descriptor) int { return a.Base - b.Base })
	return out
}

// Covered returns the indices covered by the descriptor at base, in order.
// With a positive Value exactly Value terms are produced; otherwise the
// half-open range [Base, Max) is walked.
func (f *Feature) Covered(base int) []int {
	d, ok := f.objects[base]
	if !ok {
		return nil
	}
	var out []int
	if f.Value > 0 {
		for i := 0; i < f.Value; i++ {
			out = append(out, d.Base+i*d.Step)
		}
		return out
	}
	for i := d.Base; i < d.Max; i += d.Step {
		out = append(out, i)
	}
	return out
}

// Count returns the number of indices covered by the descriptor at base.
func (f *Feature) Count(base int) int { return len(f.Covered(base)) }

// Indices returns every covered index, sorted.
func (f *Feature) Indices() []int {
	var out []int
	for _, d := range f.Descriptors() {
		out = append(out, f.Covered(d.Base)...)
	}
	slices.Sort(out)
	return out
}

// FirstIndices returns the first covered index of every descriptor.
func (f *Feature) FirstIndices() []int {
	var out []int
	for _, d := range f.Descriptors() {
		out = append(out, d.Base)
	}
	return out
}

// Position returns the offset of index within its descriptor and the
// descriptor's first index.
func (f *Feature) Position(index int) (pos, first int, ok bool) {
	for _, d := range f.Descriptors() {
		if i := slices.Index(f.Covered(d.Base), index); i >= 0 {
			return i, d.Base, true
		}
	}
	return 0, 0, false
}

// IsFirst reports whether index starts one of the feature's descriptors.
func (f *Feature) IsFirst(index int) bool {
	_, ok := f.objects[index]
	return ok
}

// MacroName returns the identifier used in the generated NO_ macro.
func (f *Feature) MacroName() string { return ToMacroName(f.Name) }
