package od

import (
	"fmt"
	"log/slog"
)

// Membership places one index inside a combined run.
type Membership struct {
	Feature  *Feature
	First    uint16
	Position int
	Count    int
}

// Assignments is the feature association table produced by Resolve. It is
// keyed by index and never changes once built.
type Assignments struct {
	members map[uint16]Membership
}

// Lookup returns the membership of index, if it belongs to a combined run.
func (a *Assignments) Lookup(index uint16) (Membership, bool) {
	if a == nil {
		return Membership{}, false
	}
	m, ok := a.members[index]
	return m, ok
}

// IsCombined reports whether index belongs to a combined run.
func (a *Assignments) IsCombined(index uint16) bool {
	_, ok := a.Lookup(index)
	return ok
}

// IsFirst reports whether index is the canonical entry of its run. Indices
// outside any run report false.
func (a *Assignments) IsFirst(index uint16) bool {
	m, ok := a.Lookup(index)
	return ok && m.First == index
}

// Emits reports whether index produces its own struct member: either it is
// not combined or it is the first of its run.
func (a *Assignments) Emits(index uint16) bool {
	m, ok := a.Lookup(index)
	return !ok || m.First == index
}

// Position returns the offset of index within its run, or 0.
func (a *Assignments) Position(index uint16) int {
	m, _ := a.Lookup(index)
	return m.Position
}

// FirstIndex returns the canonical index of the run holding index, or index
// itself when it is not combined.
func (a *Assignments) FirstIndex(index uint16) uint16 {
	if m, ok := a.Lookup(index); ok {
		return m.First
	}
	return index
}

// Len returns the number of assigned indices.
func (a *Assignments) Len() int {
	if a == nil {
		return 0
	}
	return len(a.members)
}

// Resolve expands every feature of d and assigns it to the entries it covers.
// Covered indices missing from d are logged and skipped.
func Resolve(d *Directory, logger *slog.Logger) (*Assignments, error) {
	a := &Assignments{members: map[uint16]Membership{}}
	for _, f := range d.Features() {
		for _, desc := range f.Descriptors() {
			covered := f.Covered(desc.Base)
			for pos, idx := range covered {
				index := uint16(idx)
				if _, ok := d.Entry(index); !ok {
					logger.Warn("Feature covers missing object, skipping", "feature", f.Name, "index", fmt.Sprintf("0x%04x", idx))
					continue
				}
				if prev, ok := a.members[index]; ok {
					return nil, newError(ErrStructure, idx, NoIndex, f.Name, "",
						fmt.Sprintf("object already assigned to feature %q", prev.Feature.Name))
				}
				a.members[index] = Membership{
					Feature:  f,
					First:    uint16(desc.Base),
					Position: pos,
					Count:    len(covered),
				}
			}
		}
		logger.Debug("Resolved feature", "feature", f.Name, "value", f.Value, "indices", len(f.Indices()))
	}
	return a, nil
}
