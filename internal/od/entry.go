package od

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// RawSection is one section of the input file: key to raw string value.
type RawSection map[string]string

// Entry is a dictionary object. Top-level entries are addressed by Index and
// may own children addressed by Subindex; children never own children.
type Entry struct {
	Index    uint16
	Subindex uint8

	Name        string
	Description string
	ObjectType  ObjectType
	// DataType and AccessType are zero when unset, which only a RECORD may be.
	DataType   DataType
	AccessType AccessType
	MemoryType MemoryType

	Default *Value
	Value   *Value

	Disabled      bool
	PDOMapping    PDOMapping
	TPDODetectCOS bool

	AccessFunctionName     string
	AccessFunctionPreCode  string
	AccessFunctionPostCode string

	// Length, when HasLength is set, overrides the sub-index count written to
	// the dispatch table.
	Length    int
	HasLength bool

	parent   *Entry
	children map[uint8]*Entry
}

// NewEntry builds a top-level entry from its raw section.
func NewEntry(index uint16, fields RawSection) (*Entry, error) {
	return newEntry(index, 0, nil, fields)
}

func newEntry(index uint16, subindex uint8, parent *Entry, fields RawSection) (*Entry, error) {
	e := &Entry{
		Index:    index,
		Subindex: subindex,
		parent:   parent,
		children: map[uint8]*Entry{},
	}
	sub := NoIndex
	if parent != nil {
		sub = int(subindex)
	}
	fail := func(kind error, field, format string, args ...any) error {
		return newError(kind, int(index), sub, e.Name, field, fmt.Sprintf(format, args...))
	}

	e.Name = strings.TrimSpace(fields["name"])
	if e.Name == "" {
		return nil, fail(ErrValue, "name", "missing required field")
	}

	if raw, ok := fields["object_type"]; ok && strings.TrimSpace(raw) != "" {
		ot, err := ParseObjectType(raw)
		if err != nil {
			return nil, at(err, int(index), sub, e.Name)
		}
		e.ObjectType = ot
	} else if parent != nil {
		e.ObjectType = VAR
	} else {
		return nil, fail(ErrValue, "object_type", "missing required field")
	}

	if raw := fields["data_type"]; strings.TrimSpace(raw) != "" {
		dt, err := ParseDataType(raw)
		if err != nil {
			return nil, at(err, int(index), sub, e.Name)
		}
		e.DataType = dt
	} else if parent != nil {
		e.DataType = parent.DataType
	}
	if raw := fields["access_type"]; strings.TrimSpace(raw) != "" {
		a, err := ParseAccessType(raw)
		if err != nil {
			return nil, at(err, int(index), sub, e.Name)
		}
		e.AccessType = a
	} else if parent != nil {
		e.AccessType = parent.AccessType
	}
	if e.ObjectType != RECORD {
		if e.DataType == 0 {
			return nil, fail(ErrValue, "data_type", "missing required field")
		}
		if e.AccessType == 0 {
			return nil, fail(ErrValue, "access_type", "missing required field")
		}
	}

	switch raw := fields["memory_type"]; {
	case strings.TrimSpace(raw) != "":
		m, err := ParseMemoryType(raw)
		if err != nil {
			return nil, at(err, int(index), sub, e.Name)
		}
		e.MemoryType = m
	case parent != nil:
		e.MemoryType = parent.MemoryType
	default:
		e.MemoryType = RAM
	}

	e.Description = fields["description"]

	var err error
	if e.Disabled, err = parseFlag(fields, "disabled"); err != nil {
		return nil, fail(ErrValue, "disabled", "%v", err)
	}
	if e.TPDODetectCOS, err = parseFlag(fields, "TPDO_detect_COS"); err != nil {
		return nil, fail(ErrValue, "TPDO_detect_COS", "%v", err)
	}
	if e.PDOMapping, err = ParsePDOMapping(fields["PDO_mapping"]); err != nil {
		return nil, at(err, int(index), sub, e.Name)
	}

	e.AccessFunctionName = strings.TrimSpace(fields["access_function_name"])
	e.AccessFunctionPreCode = fields["access_function_precode"]
	e.AccessFunctionPostCode = fields["access_function_postcode"]
	if e.AccessFunctionName != "" && (e.AccessFunctionPreCode != "" || e.AccessFunctionPostCode != "") {
		return nil, fail(ErrValue, "access_function_name", "custom access function name excludes pre/post code")
	}

	if raw, ok := fields["length"]; ok && strings.TrimSpace(raw) != "" {
		n, ok := parseInt(strings.TrimSpace(raw))
		if !ok || n.Sign() < 0 || !n.IsInt64() || n.Int64() > 0xFF {
			return nil, fail(ErrValue, "length", "bad length %q", raw)
		}
		e.Length, e.HasLength = int(n.Int64()), true
	}

	if e.DataType != 0 {
		if raw, ok := valueField(fields, "default", e.DataType); ok {
			v, err := ParseValue(e.DataType, raw)
			if err != nil {
				return nil, at(err, int(index), sub, e.Name)
			}
			e.Default = v
		}
		e.Value = e.Default
		if raw, ok := valueField(fields, "value", e.DataType); ok {
			v, err := ParseValue(e.DataType, raw)
			if err != nil {
				return nil, at(err, int(index), sub, e.Name)
			}
			e.Value = v
		}
	}

	return e, nil
}

// valueField returns the raw literal under key. A blank literal counts as unset
// except for array-like types, where it is the empty value.
func valueField(fields RawSection, key string, dt DataType) (string, bool) {
	raw, ok := fields[key]
	if !ok || (!dt.IsArray() && strings.TrimSpace(raw) == "") {
		return "", false
	}
	return raw, true
}

func parseFlag(fields RawSection, key string) (bool, error) {
	raw := strings.TrimSpace(fields[key])
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// AddChild constructs a child entry at subindex from its raw section.
// Unset data, access and memory types are taken from the receiver.
func (e *Entry) AddChild(subindex uint8, fields RawSection) (*Entry, error) {
	if e.IsChild() {
		return nil, newError(ErrStructure, int(e.Index), int(e.Subindex), e.Name, "", "child entry cannot own children")
	}
	if e.ObjectType == VAR {
		return nil, newError(ErrStructure, int(e.Index), int(subindex), e.Name, "", "VAR entry cannot own children")
	}
	if _, ok := e.children[subindex]; ok {
		return nil, newError(ErrDuplicate, int(e.Index), int(subindex), e.Name, "", "sub-index already present")
	}
	child, err := newEntry(e.Index, subindex, e, fields)
	if err != nil {
		return nil, err
	}
	if child.ObjectType == RECORD {
		return nil, newError(ErrStructure, int(e.Index), int(subindex), child.Name, "object_type", "record cannot be nested")
	}
	e.children[subindex] = child
	return child, nil
}

// IsChild reports whether the entry is owned by a parent.
func (e *Entry) IsChild() bool { return e.parent != nil }

// Parent returns the owning entry, or nil for a top-level entry.
func (e *Entry) Parent() *Entry { return e.parent }

// Child returns the child at subindex.
func (e *Entry) Child(subindex uint8) (*Entry, bool) {
	c, ok := e.children[subindex]
	return c, ok
}

// Children returns the children ordered by sub-index.
func (e *Entry) Children() []*Entry {
	keys := make([]uint8, 0, len(e.children))
	for k := range e.children {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*Entry, len(keys))
	for i, k := range keys {
		out[i] = e.children[k]
	}
	return out
}

// Elements returns the children holding array elements (sub-index 1 and up).
func (e *Entry) Elements() []*Entry {
	children := e.Children()
	if len(children) > 0 && children[0].Subindex == 0 {
		return children[1:]
	}
	return children
}

// NumChildren returns the number of children.
func (e *Entry) NumChildren() int { return len(e.children) }

// UID returns the generated C identifier for the entry.
func (e *Entry) UID() string { return ToUID(e.Name) }

func (e *Entry) String() string {
	if e.IsChild() {
		return fmt.Sprintf("%-30s", e.Name)
	}
	return fmt.Sprintf("%-30s (%d)", e.Name, len(e.children))
}
