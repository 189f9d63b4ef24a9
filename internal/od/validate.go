package od

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Validate checks every combined run against its canonical entry and the
// uniqueness of generated identifiers. All problems are logged; the returned
// error joins them.
func Validate(d *Directory, a *Assignments, logger *slog.Logger) error {
	var errs []error

	for _, e := range d.Entries() {
		m, ok := a.Lookup(e.Index)
		if !ok || m.First == e.Index {
			continue
		}
		first, ok := d.Entry(m.First)
		if !ok {
			logger.Error("Combined object has no canonical object", "index", hex4(e.Index), "first", hex4(m.First), "feature", m.Feature.Name)
			errs = append(errs, newError(ErrStructure, int(e.Index), NoIndex, e.Name, "",
				fmt.Sprintf("combined with missing object 0x%04x", m.First)))
			continue
		}
		for _, field := range mismatchedFields(first, e) {
			logger.Error("Combined object differs from its canonical object",
				"index", hex4(e.Index), "first", hex4(first.Index), "field", field)
			errs = append(errs, newError(ErrValue, int(e.Index), NoIndex, e.Name, field,
				fmt.Sprintf("combined with 0x%04x, %s must be the same", first.Index, field)))
		}
	}

	seen := map[string]uint16{}
	for _, e := range d.Entries() {
		if a.Emits(e.Index) {
			uid := e.UID()
			if prev, ok := seen[uid]; ok {
				logger.Error("Duplicated object name", "index", hex4(e.Index), "other", hex4(prev), "uid", uid)
				errs = append(errs, newError(ErrDuplicate, int(e.Index), NoIndex, e.Name, "name",
					fmt.Sprintf("identifier %s already used by 0x%04x", uid, prev)))
			} else {
				seen[uid] = e.Index
			}
		}

		if e.ObjectType == RECORD {
			childSeen := map[string]uint8{}
			for _, c := range e.Children() {
				if c.MemoryType != e.MemoryType {
					logger.Error("Record member stored apart from its record", "index", hex4(e.Index), "subindex", c.Subindex, "memory_type", c.MemoryType)
					errs = append(errs, newError(ErrStructure, int(e.Index), int(c.Subindex), c.Name, "memory_type",
						fmt.Sprintf("record member must use the record memory type %s", e.MemoryType)))
				}
				uid := c.UID()
				if prev, ok := childSeen[uid]; ok {
					logger.Error("Duplicated record member name", "index", hex4(e.Index), "subindex", c.Subindex, "other", prev, "uid", uid)
					errs = append(errs, newError(ErrDuplicate, int(e.Index), NoIndex, e.Name, "name",
						fmt.Sprintf("record member identifier %s used by sub-indices %d and %d", uid, prev, c.Subindex)))
					continue
				}
				childSeen[uid] = c.Subindex
			}
		}
	}

	return errors.Join(errs...)
}

// mismatchedFields lists the fields of e that must equal those of the
// canonical entry first but do not.
func mismatchedFields(first, e *Entry) []string {
	var out []string
	if first.ObjectType != e.ObjectType {
		out = append(out, "object_type")
	}
	if first.MemoryType != e.MemoryType {
		out = append(out, "memory_type")
	}
	switch e.ObjectType {
	case VAR, ARRAY:
		if first.Name != e.Name {
			out = append(out, "name")
		}
		if first.DataType != e.DataType {
			out = append(out, "data_type")
		}
		fallthrough
	case RECORD:
		if first.AccessType != e.AccessType {
			out = append(out, "access_type")
		}
		if first.PDOMapping != e.PDOMapping {
			out = append(out, "PDO_mapping")
		}
	}
	if first.ObjectType == e.ObjectType && (e.ObjectType == RECORD || first.DataType == e.DataType) {
		for _, f := range shapeFields(first, e) {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// shapeFields lists what would make the storage of e differ from first.
// Members of a run share one declaration sized from first, so string lengths
// and sub-entries must line up exactly. A record's own data type is unused.
func shapeFields(first, e *Entry) []string {
	var out []string
	switch e.ObjectType {
	case VAR:
		if e.DataType.IsArray() && first.Value.Len(first.DataType) != e.Value.Len(e.DataType) {
			out = append(out, "default")
		}
	case ARRAY:
		fe, ee := first.Elements(), e.Elements()
		if len(fe) != len(ee) {
			return append(out, "sub_number")
		}
		for i := range fe {
			if fe[i].DataType != ee[i].DataType {
				out = append(out, "children")
			} else if ee[i].DataType.IsArray() && fe[i].Value.Len(fe[i].DataType) != ee[i].Value.Len(ee[i].DataType) {
				out = append(out, "default")
			}
		}
	case RECORD:
		fc, ec := first.Children(), e.Children()
		if len(fc) != len(ec) {
			return append(out, "sub_number")
		}
		for i := range fc {
			a, b := fc[i], ec[i]
			if a.Subindex != b.Subindex || a.UID() != b.UID() || a.DataType != b.DataType {
				out = append(out, "children")
			} else if b.DataType.IsArray() && a.Value.Len(a.DataType) != b.Value.Len(b.DataType) {
				out = append(out, "default")
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func hex4[T ~uint16 | ~int](v T) string { return fmt.Sprintf("0x%04x", int(v)) }
