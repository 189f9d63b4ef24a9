package cgen

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/exmachina-dev/CANopenNode/internal/codegen/meta"
	"github.com/exmachina-dev/CANopenNode/internal/od"
)

// Bucket collects the struct members and positional initializers of one
// storage struct.
type Bucket struct {
	Definitions  []string `json:"definitions" yaml:"definitions" cbor:"definitions"`
	Initializers []string `json:"initializers" yaml:"initializers" cbor:"initializers"`
}

// Layout holds every fragment substituted into the two output files, in
// dictionary order.
type Layout struct {
	Macros    []string `json:"macros" yaml:"macros" cbor:"macros"`
	Typedefs  []string `json:"typedefs" yaml:"typedefs" cbor:"typedefs"`
	RAM       Bucket   `json:"ram" yaml:"ram" cbor:"ram"`
	EEPROM    Bucket   `json:"eeprom" yaml:"eeprom" cbor:"eeprom"`
	ROM       Bucket   `json:"rom" yaml:"rom" cbor:"rom"`
	Aliases   []string `json:"aliases" yaml:"aliases" cbor:"aliases"`
	Records   []string `json:"records" yaml:"records" cbor:"records"`
	Functions []string `json:"functions" yaml:"functions" cbor:"functions"`
	Rows      []string `json:"rows" yaml:"rows" cbor:"rows"`
}

// Bucket returns the storage bucket of m.
func (l *Layout) Bucket(m od.MemoryType) (*Bucket, error) {
	switch m {
	case od.RAM:
		return &l.RAM, nil
	case od.EEPROM:
		return &l.EEPROM, nil
	case od.ROM:
		return &l.ROM, nil
	}
	return nil, fmt.Errorf("no storage bucket for memory type %d", m)
}

// Fragments calls fn for every fragment list in output order.
func (l *Layout) Fragments(fn func(list string, fragments []string)) {
	fn("macros", l.Macros)
	fn("typedefs", l.Typedefs)
	fn("ram.definitions", l.RAM.Definitions)
	fn("eeprom.definitions", l.EEPROM.Definitions)
	fn("rom.definitions", l.ROM.Definitions)
	fn("aliases", l.Aliases)
	fn("ram.initializers", l.RAM.Initializers)
	fn("eeprom.initializers", l.EEPROM.Initializers)
	fn("rom.initializers", l.ROM.Initializers)
	fn("records", l.Records)
	fn("functions", l.Functions)
	fn("rows", l.Rows)
}

// run tracks the initializer slots of a combined run until every member has
// been visited.
type run struct {
	bucket *Bucket
	pos    int
	slots  []string
}

type assembler struct {
	logger *slog.Logger
	md     *meta.Metadata
	ref    string
	l      *Layout
	runs   map[uint16]*run
	protos map[string]bool
	bodies []string
}

const functionArgs = "(void*, UNSIGNED16, UNSIGNED8, UNSIGNED16*, UNSIGNED16, UNSIGNED8, void*, const void*)"

// Assemble walks the directory of md in index order and builds its layout.
func Assemble(logger *slog.Logger, md *meta.Metadata) (*Layout, error) {
	a := &assembler{
		logger: logger,
		md:     md,
		ref:    md.Reference,
		l:      &Layout{},
		runs:   map[uint16]*run{},
		protos: map[string]bool{},
	}

	for _, f := range md.Directory.Features() {
		a.l.Macros = append(a.l.Macros, a.featureMacro(f))
	}

	a.l.Functions = append(a.l.Functions, fmt.Sprintf("UNSIGNED32 CO%s_ODF%s;", a.ref, functionArgs))

	for _, e := range md.Directory.Entries() {
		if e.Disabled {
			logger.Debug("Skipping disabled object", "index", hex4(e.Index))
			continue
		}
		if err := a.entry(e); err != nil {
			return nil, err
		}
	}

	for _, first := range md.Directory.Indices() {
		r, ok := a.runs[first]
		if !ok {
			continue
		}
		r.bucket.Initializers[r.pos] = fmt.Sprintf("/* %#x */ {%s},", first, strings.Join(r.slots, ", "))
	}
	a.l.Functions = append(a.l.Functions, a.bodies...)

	return a.l, nil
}

func (a *assembler) featureMacro(f *od.Feature) string {
	indices := f.Indices()
	value := f.Value
	if value == 0 {
		value = len(indices)
	}

	var comment string
	switch {
	case len(indices) > 16:
		comment = fmt.Sprintf("// Associated objects from %#x to %#x (%#x)", indices[0], indices[len(indices)-1], len(indices))
	case len(indices) > 0:
		parts := make([]string, len(indices))
		for i, idx := range indices {
			parts[i] = fmt.Sprintf("%#x", idx)
		}
		comment = "// Associated objects: " + strings.Join(parts, ", ")
	}

	name := fmt.Sprintf("CO%s_NO_%s", a.ref, f.MacroName())
	return strings.TrimRight(fmt.Sprintf("    #define %-25s %-4d    %s", name, value, comment), " ")
}

func (a *assembler) entry(e *od.Entry) error {
	lit, err := Literal(e, a.md.LenientRange)
	if err != nil {
		return err
	}
	m, combined := a.md.Assignments.Lookup(e.Index)

	if combined && m.First != e.Index {
		r, ok := a.runs[m.First]
		if !ok {
			a.logger.Warn("Canonical object of combined run not generated, skipping", "index", hex4(e.Index), "first", hex4(m.First))
			return nil
		}
		r.slots[m.Position] = lit
	} else {
		bucket, err := a.l.Bucket(e.MemoryType)
		if err != nil {
			return err
		}
		count := 0
		if combined {
			count = m.Count
		}
		bucket.Definitions = append(bucket.Definitions, a.definition(e, count))
		bucket.Initializers = append(bucket.Initializers, fmt.Sprintf("/* %#x */ %s,", e.Index, lit))
		if combined {
			slots := make([]string, m.Count)
			for i := range slots {
				slots[i] = zeroLiteral(e)
			}
			slots[m.Position] = lit
			a.runs[e.Index] = &run{bucket: bucket, pos: len(bucket.Initializers) - 1, slots: slots}
		}
		a.aliases(e, count)
		if e.ObjectType == od.RECORD {
			a.l.Typedefs = append(a.l.Typedefs, a.typedef(e))
		}
	}

	base := a.storage(e, m, combined)
	if e.ObjectType == od.RECORD {
		a.l.Records = append(a.l.Records, a.record(e, base))
	}
	a.function(e)
	a.l.Rows = append(a.l.Rows, a.row(e, base))
	return nil
}

// declarator returns the member name with its array dimensions.
func declarator(e *od.Entry, count int) string {
	s := e.UID()
	if count > 0 {
		s += fmt.Sprintf("[%d]", count)
	}
	switch {
	case e.ObjectType == od.ARRAY:
		s += fmt.Sprintf("[%d]", len(e.Elements()))
		if e.DataType.IsArray() {
			s += fmt.Sprintf("[%d]", elementLength(e))
		}
	case e.ObjectType == od.VAR && e.DataType.IsArray():
		s += fmt.Sprintf("[%d]", valueLength(e))
	}
	return s
}

func (a *assembler) definition(e *od.Entry, count int) string {
	return fmt.Sprintf("/* %#x */ %-14s %s;", e.Index, TypeName(e, a.ref), declarator(e, count))
}

func (a *assembler) typedef(e *od.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/* %#x */ typedef struct {\n", e.Index)
	for _, c := range e.Children() {
		fmt.Fprintf(&b, "               %-14s %s;\n", TypeName(c, a.ref), declarator(c, 0))
	}
	fmt.Fprintf(&b, "               } %s;", recordTypeName(e, a.ref))
	return b.String()
}

func (a *assembler) aliases(e *od.Entry, count int) {
	typ := TypeName(e, a.ref)
	if count > 0 {
		typ += fmt.Sprintf(", array[%d]", count)
	}
	uid := e.UID()
	a.l.Aliases = append(a.l.Aliases,
		fmt.Sprintf("/* %#x, data type: %s */", e.Index, typ),
		fmt.Sprintf("    #define OD%s_%-40sCO%s_OD_%s.%s", a.ref, uid, a.ref, e.MemoryType, uid))

	switch {
	case e.ObjectType == od.ARRAY:
		a.l.Aliases = append(a.l.Aliases,
			fmt.Sprintf("      #define %-50s %d", fmt.Sprintf("ODL%s_%s_arrayLength", a.ref, uid), len(e.Elements())))
	case e.ObjectType == od.VAR && e.DataType.IsArray():
		a.l.Aliases = append(a.l.Aliases,
			fmt.Sprintf("      #define %-50s %d", fmt.Sprintf("ODL%s_%s_stringLength", a.ref, uid), valueLength(e)))
	}
}

// storage returns the C lvalue of the entry inside its storage struct.
func (a *assembler) storage(e *od.Entry, m od.Membership, combined bool) string {
	s := fmt.Sprintf("CO%s_OD_%s.%s", a.ref, e.MemoryType, e.UID())
	if combined {
		first, _ := a.md.Directory.Entry(m.First)
		s = fmt.Sprintf("CO%s_OD_%s.%s[%d]", a.ref, first.MemoryType, first.UID(), m.Position)
	}
	return s
}

// pointer returns the address expression stored in a dispatch or record row.
func pointer(e *od.Entry, lvalue string) string {
	if e.ObjectType == od.ARRAY || e.DataType.IsArray() {
		return "(void*)&" + lvalue + "[0]"
	}
	return "(void*)&" + lvalue
}

func (a *assembler) record(e *od.Entry, base string) string {
	children := e.Children()
	var b strings.Builder
	fmt.Fprintf(&b, "/* %#x */ const CO_OD_entryRecord_t OD%s_record%04x[%d] = {\n", e.Index, a.ref, e.Index, len(children))
	for _, c := range children {
		fmt.Fprintf(&b, "           {%s, 0x%02x, %d},\n", pointer(c, base+"."+c.UID()), Attribute(c), valueLength(c))
	}
	b.WriteString("};")
	return b.String()
}

func (a *assembler) function(e *od.Entry) {
	switch {
	case e.AccessFunctionName != "":
		if a.protos[e.AccessFunctionName] {
			return
		}
		a.protos[e.AccessFunctionName] = true
		a.l.Functions = append(a.l.Functions, fmt.Sprintf("UNSIGNED32 %s%s;", e.AccessFunctionName, functionArgs))
	case e.AccessFunctionPreCode != "" || e.AccessFunctionPostCode != "":
		var b strings.Builder
		fmt.Fprintf(&b, "UNSIGNED32 CO%s_ODF_%04x(void *object, UNSIGNED16 index, UNSIGNED8 subIndex, UNSIGNED16 *pLength,\n", a.ref, e.Index)
		b.WriteString("                 UNSIGNED16 attribute, UNSIGNED8 dir, void *dataBuff, const void *pData){\n")
		b.WriteString("   UNSIGNED32 abortCode;\n")
		if code := strings.TrimSpace(e.AccessFunctionPreCode); code != "" {
			b.WriteString(indent(3, code) + "\n")
		}
		fmt.Fprintf(&b, "   abortCode = CO%s_ODF(object, index, subIndex, pLength, attribute, dir, dataBuff, pData);\n", a.ref)
		if code := strings.TrimSpace(e.AccessFunctionPostCode); code != "" {
			b.WriteString(indent(3, code) + "\n")
		}
		b.WriteString("   return abortCode;\n}")
		a.bodies = append(a.bodies, b.String())
	}
}

// row returns the dispatch table row: index, sub-index count, attribute,
// byte size and storage pointer.
func (a *assembler) row(e *od.Entry, base string) string {
	subs, size := 0, 0
	ptr := pointer(e, base)
	switch e.ObjectType {
	case od.RECORD:
		ptr = fmt.Sprintf("(void*)&OD%s_record%04x", a.ref, e.Index)
	case od.ARRAY:
		subs, size = len(e.Elements()), elementLength(e)
	default:
		size = valueLength(e)
	}
	if e.HasLength {
		subs = e.Length
	}
	return fmt.Sprintf("{%s, 0x%02x, 0x%02x, %d, %s},", hex4(e.Index), subs, Attribute(e), size, ptr)
}

func hex4[T ~uint16 | ~int](v T) string { return fmt.Sprintf("0x%04x", int(v)) }
