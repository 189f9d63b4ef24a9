package od

import "strings"

// MemoryType selects the storage struct an entry lives in. The numeric value
// doubles as the low bits of the generated attribute byte.
type MemoryType uint8

const (
	RAM    MemoryType = 0x01
	EEPROM MemoryType = 0x02
	ROM    MemoryType = 0x03
)

var memoryTypes = map[string]MemoryType{
	"RAM":    RAM,
	"EEPROM": EEPROM,
	"ROM":    ROM,
}

func (m MemoryType) String() string {
	switch m {
	case RAM:
		return "RAM"
	case EEPROM:
		return "EEPROM"
	case ROM:
		return "ROM"
	default:
		return "UNKNOWN"
	}
}

// MemoryTypes lists every memory class in output order.
func MemoryTypes() []MemoryType {
	return []MemoryType{RAM, EEPROM, ROM}
}

// ParseMemoryType resolves a memory class by name.
func ParseMemoryType(s string) (MemoryType, error) {
	m, ok := memoryTypes[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fieldError("memory_type", "bad memory type "+quote(s))
	}
	return m, nil
}

// ObjectType is the CANopen object code.
type ObjectType uint8

const (
	VAR    ObjectType = 0x07
	ARRAY  ObjectType = 0x08
	RECORD ObjectType = 0x09
)

var objectTypes = map[string]ObjectType{
	"VAR":    VAR,
	"ARRAY":  ARRAY,
	"RECORD": RECORD,
}

func (o ObjectType) String() string {
	switch o {
	case VAR:
		return "VAR"
	case ARRAY:
		return "ARRAY"
	case RECORD:
		return "RECORD"
	default:
		return "UNKNOWN"
	}
}

// ParseObjectType resolves an object type by name.
func ParseObjectType(s string) (ObjectType, error) {
	o, ok := objectTypes[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fieldError("object_type", "bad object type "+quote(s))
	}
	return o, nil
}

// DataType is a CANopen basic data type.
type DataType uint8

const (
	BOOL     DataType = 0x01
	INT8     DataType = 0x02
	INT16    DataType = 0x03
	INT32    DataType = 0x04
	UINT8    DataType = 0x05
	UINT16   DataType = 0x06
	UINT32   DataType = 0x07
	REAL32   DataType = 0x08
	VSTRING  DataType = 0x09
	OSTRING  DataType = 0x0A
	USTRING  DataType = 0x0B
	TIMEOD   DataType = 0x0C
	TIMEDIFF DataType = 0x0D
	DOMAIN   DataType = 0x0F
	INT24    DataType = 0x10
	REAL64   DataType = 0x11
	INT40    DataType = 0x12
	INT48    DataType = 0x13
	INT56    DataType = 0x14
	INT64    DataType = 0x15
	UINT24   DataType = 0x16
	UINT40   DataType = 0x18
	UINT48   DataType = 0x19
	UINT56   DataType = 0x1A
	UINT64   DataType = 0x1B
)

// VariableSize is the byte size reported by array-like data types.
const VariableSize = -1

type dataTypeInfo struct {
	name  string
	size  int
	cname string
}

var dataTypeInfos = map[DataType]dataTypeInfo{
	BOOL:     {"BOOL", 1, "BOOLEAN"},
	INT8:     {"INT8", 1, "INTEGER8"},
	INT16:    {"INT16", 2, "INTEGER16"},
	INT32:    {"INT32", 4, "INTEGER32"},
	UINT8:    {"UINT8", 1, "UNSIGNED8"},
	UINT16:   {"UINT16", 2, "UNSIGNED16"},
	UINT32:   {"UINT32", 4, "UNSIGNED32"},
	REAL32:   {"REAL32", 4, "REAL32"},
	VSTRING:  {"VSTRING", VariableSize, "VISIBLE_STRING"},
	OSTRING:  {"OSTRING", VariableSize, "OCTET_STRING"},
	USTRING:  {"USTRING", VariableSize, "UNICODE_STRING"},
	TIMEOD:   {"TIMEOD", 6, "TIME_OF_DAY"},
	TIMEDIFF: {"TIMEDIFF", 6, "TIME_DIFFERENCE"},
	DOMAIN:   {"DOMAIN", VariableSize, "DOMAIN"},
	INT24:    {"INT24", 3, "INTEGER24"},
	REAL64:   {"REAL64", 8, "REAL64"},
	INT40:    {"INT40", 5, "INTEGER40"},
	INT48:    {"INT48", 6, "INTEGER48"},
	INT56:    {"INT56", 7, "INTEGER56"},
	INT64:    {"INT64", 8, "INTEGER64"},
	UINT24:   {"UINT24", 3, "UNSIGNED24"},
	UINT40:   {"UINT40", 5, "UNSIGNED40"},
	UINT48:   {"UINT48", 6, "UNSIGNED48"},
	UINT56:   {"UINT56", 7, "UNSIGNED56"},
	UINT64:   {"UINT64", 8, "UNSIGNED64"},
}

var dataTypes = func() map[string]DataType {
	m := make(map[string]DataType, len(dataTypeInfos))
	for dt, info := range dataTypeInfos {
		m[info.name] = dt
	}
	return m
}()

// ParseDataType resolves a data type by name.
func ParseDataType(s string) (DataType, error) {
	dt, ok := dataTypes[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fieldError("data_type", "bad data type "+quote(s))
	}
	return dt, nil
}

func (d DataType) String() string {
	if info, ok := dataTypeInfos[d]; ok {
		return info.name
	}
	return "UNKNOWN"
}

// Ident returns the CANopen numeric identifier of the type.
func (d DataType) Ident() uint8 { return uint8(d) }

// Size returns the byte size, or VariableSize for array-like types.
func (d DataType) Size() int {
	if info, ok := dataTypeInfos[d]; ok {
		return info.size
	}
	return VariableSize
}

// CName returns the type name used in the generated C sources.
func (d DataType) CName() string {
	return dataTypeInfos[d].cname
}

func (d DataType) IsSignedInteger() bool {
	switch d {
	case INT8, INT16, INT24, INT32, INT40, INT48, INT56, INT64:
		return true
	}
	return false
}

func (d DataType) IsUnsignedInteger() bool {
	switch d {
	case UINT8, UINT16, UINT24, UINT32, UINT40, UINT48, UINT56, UINT64:
		return true
	}
	return false
}

func (d DataType) IsInteger() bool { return d.IsSignedInteger() || d.IsUnsignedInteger() }

// IsArray reports whether the length comes from the value instead of a fixed size.
func (d DataType) IsArray() bool {
	switch d {
	case VSTRING, OSTRING, USTRING, DOMAIN:
		return true
	}
	return false
}

func (d DataType) IsReal() bool { return d == REAL32 || d == REAL64 }

func (d DataType) IsTime() bool { return d == TIMEOD || d == TIMEDIFF }

// AccessType controls SDO access to an entry.
type AccessType uint8

const (
	CONST AccessType = iota + 1
	RO
	WO
	RW
)

var accessTypes = map[string]AccessType{
	"CONST": CONST,
	"RO":    RO,
	"WO":    WO,
	"RW":    RW,
}

func (a AccessType) String() string {
	switch a {
	case CONST:
		return "CONST"
	case RO:
		return "RO"
	case WO:
		return "WO"
	case RW:
		return "RW"
	default:
		return ""
	}
}

// ParseAccessType resolves an access type by name.
func ParseAccessType(s string) (AccessType, error) {
	a, ok := accessTypes[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return 0, fieldError("access_type", "bad access type "+quote(s))
	}
	return a, nil
}

// PDOMapping tells whether an entry may be mapped into process data objects.
// The zero value means not mappable.
type PDOMapping uint8

const (
	PDONone PDOMapping = iota
	PDOOpt
	PDORPDO
	PDOTPDO
)

var pdoMappings = map[string]PDOMapping{
	"OPT":  PDOOpt,
	"RPDO": PDORPDO,
	"TPDO": PDOTPDO,
}

func (p PDOMapping) String() string {
	switch p {
	case PDOOpt:
		return "OPT"
	case PDORPDO:
		return "RPDO"
	case PDOTPDO:
		return "TPDO"
	default:
		return ""
	}
}

// ParsePDOMapping resolves a PDO mapping by name. An empty string or "none"
// yields PDONone.
func ParsePDOMapping(s string) (PDOMapping, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "NONE" {
		return PDONone, nil
	}
	p, ok := pdoMappings[s]
	if !ok {
		return 0, fieldError("PDO_mapping", "bad PDO mapping "+quote(s))
	}
	return p, nil
}
