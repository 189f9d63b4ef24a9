package cgen

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/exmachina-dev/CANopenNode/internal/od"
)

// Attribute bits of a dispatch table row. The low two bits carry the memory type.
const (
	attrReadable  = 0x04
	attrWritable  = 0x08
	attrRPDO      = 0x10
	attrTPDO      = 0x20
	attrDetectCOS = 0x40
	attrMultiByte = 0x80
)

// TypeName returns the C type of e: the data type name, or the synthesized
// struct name for a RECORD.
func TypeName(e *od.Entry, ref string) string {
	if e.ObjectType == od.RECORD {
		return recordTypeName(e, ref)
	}
	return e.DataType.CName()
}

func recordTypeName(e *od.Entry, ref string) string {
	return fmt.Sprintf("OD%s_%s_t", ref, e.UID())
}

// Length returns the element count of e: the byte size for fixed-size types,
// the value length for array-like types, the child count for a RECORD and the
// element count for an ARRAY.
func Length(e *od.Entry) int {
	switch e.ObjectType {
	case od.RECORD:
		return e.NumChildren()
	case od.ARRAY:
		return len(e.Elements())
	}
	return valueLength(e)
}

func valueLength(e *od.Entry) int {
	if e.DataType.IsArray() {
		return e.Value.Len(e.DataType)
	}
	return e.DataType.Size()
}

// elementLength is the per-element byte size used in the dispatch row of an
// ARRAY: the fixed size, or the longest element value for array-like types.
func elementLength(e *od.Entry) int {
	if !e.DataType.IsArray() {
		return e.DataType.Size()
	}
	n := 0
	for _, c := range e.Elements() {
		n = max(n, c.Value.Len(c.DataType))
	}
	return n
}

// Attribute returns the attribute byte of the dispatch table row for e.
func Attribute(e *od.Entry) uint8 {
	attr := uint8(e.MemoryType)
	if e.AccessType != od.WO {
		attr |= attrReadable
	}
	if e.AccessType == od.WO || e.AccessType == od.RW {
		attr |= attrWritable
	}
	if e.PDOMapping == od.PDOOpt || e.PDOMapping == od.PDORPDO {
		attr |= attrRPDO
	}
	if e.PDOMapping == od.PDOOpt || e.PDOMapping == od.PDOTPDO {
		attr |= attrTPDO
	}
	if e.TPDODetectCOS {
		attr |= attrDetectCOS
	}
	if size := dataSize(e); size != od.VariableSize && size != 1 {
		attr |= attrMultiByte
	}
	return attr
}

func dataSize(e *od.Entry) int {
	if e.ObjectType == od.RECORD || e.DataType == 0 {
		return od.VariableSize
	}
	return e.DataType.Size()
}

// Literal returns the C initializer of e.
func Literal(e *od.Entry, lenient bool) (string, error) {
	switch e.ObjectType {
	case od.RECORD:
		return joinLiterals(e.Children(), lenient)
	case od.ARRAY:
		return joinLiterals(e.Elements(), lenient)
	}
	return valueLiteral(e, lenient)
}

func joinLiterals(entries []*od.Entry, lenient bool) (string, error) {
	parts := make([]string, 0, len(entries))
	for _, c := range entries {
		lit, err := valueLiteral(c, lenient)
		if err != nil {
			return "", err
		}
		parts = append(parts, lit)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func valueLiteral(e *od.Entry, lenient bool) (string, error) {
	dt := e.DataType
	v := e.Value
	switch {
	case dt.IsInteger() || dt.IsTime() || dt == od.BOOL:
		n := big.NewInt(0)
		if v != nil && v.Int != nil {
			n = v.Int
		}
		return intLiteral(e, n, lenient)
	case dt.IsReal():
		f := 0.0
		if v != nil {
			f = v.Real
		}
		bits := 64
		if dt == od.REAL32 {
			bits = 32
			f = float64(float32(f))
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return "", &od.Error{Kind: od.ErrValue, Index: int(e.Index), Subindex: subindexOf(e), Name: e.Name, Field: "default",
				Msg: fmt.Sprintf("value %v has no finite %s literal", v.Real, dt)}
		}
		s := strconv.FormatFloat(f, 'g', -1, bits)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s, nil
	case dt == od.OSTRING:
		if v == nil || len(v.Bytes) == 0 {
			return "{}", nil
		}
		parts := make([]string, len(v.Bytes))
		for i, b := range v.Bytes {
			parts[i] = fmt.Sprintf("0x%02x", b)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case dt.IsArray():
		if v == nil || v.Text == "" {
			return "{}", nil
		}
		var parts []string
		if dt == od.USTRING {
			for _, r := range v.Text {
				if r > 0xffff {
					return "", &od.Error{Kind: od.ErrValue, Index: int(e.Index), Subindex: subindexOf(e), Name: e.Name, Field: "default",
						Msg: fmt.Sprintf("character %U does not fit a UNICODE_STRING element", r)}
				}
				parts = append(parts, unicodeLiteral(r))
			}
		} else {
			for i := 0; i < len(v.Text); i++ {
				parts = append(parts, charLiteral(v.Text[i]))
			}
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	}
	return "", &od.Error{Kind: od.ErrValue, Index: int(e.Index), Subindex: subindexOf(e), Name: e.Name, Field: "data_type", Msg: "no C literal for data type " + dt.String()}
}

// charLiteral renders one byte of a VISIBLE_STRING or DOMAIN; bytes outside
// printable ASCII are hex escaped so the element count matches the byte length.
func charLiteral(b byte) string {
	switch b {
	case '\'':
		return `'\''`
	case '\\':
		return `'\\'`
	}
	if b < 0x20 || b >= 0x7f {
		return fmt.Sprintf("'\\x%02x'", b)
	}
	return "'" + string(rune(b)) + "'"
}

// unicodeLiteral renders one UNICODE_STRING element.
func unicodeLiteral(r rune) string {
	if r >= 0x20 && r < 0x7f {
		return charLiteral(byte(r))
	}
	return fmt.Sprintf("0x%04x", r)
}

// bounds returns the legal range of an integer data type. Time types are
// treated as unsigned, BOOL as a single unsigned bit.
func bounds(dt od.DataType, lenient bool) (lo, hi *big.Int) {
	if dt == od.BOOL {
		return big.NewInt(0), big.NewInt(1)
	}
	bits := uint(8 * dt.Size())
	if dt.IsSignedInteger() {
		hi = new(big.Int).Lsh(big.NewInt(1), bits-1)
		lo = new(big.Int).Neg(hi)
	} else {
		lo = big.NewInt(0)
		hi = new(big.Int).Lsh(big.NewInt(1), bits)
	}
	if !lenient {
		hi.Sub(hi, big.NewInt(1))
	}
	return lo, hi
}

// hexDigits returns the literal width for a type size: 1, 2, 4 or 8 bytes.
func hexDigits(size int) int {
	switch {
	case size <= 1:
		return 2
	case size == 2:
		return 4
	case size <= 4:
		return 8
	default:
		return 16
	}
}

func intLiteral(e *od.Entry, n *big.Int, lenient bool) (string, error) {
	lo, hi := bounds(e.DataType, lenient)
	if n.Cmp(lo) < 0 {
		return "", &od.Error{Kind: od.ErrValue, Index: int(e.Index), Subindex: subindexOf(e), Name: e.Name, Field: "default",
			Msg: fmt.Sprintf("value %s below %s minimum %s", n, e.DataType, lo)}
	}
	if n.Cmp(hi) > 0 {
		return "", &od.Error{Kind: od.ErrValue, Index: int(e.Index), Subindex: subindexOf(e), Name: e.Name, Field: "default",
			Msg: fmt.Sprintf("value %s above %s maximum %s", n, e.DataType, hi)}
	}

	digits := hexDigits(e.DataType.Size())
	if n.Sign() < 0 {
		n = new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), uint(digits*4)))
	}
	s := n.Text(16)
	if pad := digits - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return "0x" + s, nil
}

func subindexOf(e *od.Entry) int {
	if e.IsChild() {
		return int(e.Subindex)
	}
	return od.NoIndex
}

// zeroLiteral fills the slot of a combined run member that is not generated.
func zeroLiteral(e *od.Entry) string {
	if e.ObjectType == od.VAR && !e.DataType.IsArray() {
		return "0"
	}
	return "{0}"
}
