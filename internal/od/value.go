package od

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

const nodeIDMarker = "$NODEID+"

// Value is a parsed default or current value. Exactly one of Int, Real or
// Bytes is meaningful, depending on the data type; Text keeps the literal with
// the node-ID marker removed.
type Value struct {
	Text           string
	NodeIDRelative bool
	Int            *big.Int
	Real           float64
	Bytes          []byte
}

// Len returns the element count of an array-typed value.
func (v *Value) Len(dt DataType) int {
	if v == nil {
		return 0
	}
	switch dt {
	case OSTRING:
		return len(v.Bytes)
	case USTRING:
		return len([]rune(v.Text))
	default:
		return len(v.Text)
	}
}

// ParseValue parses a raw literal according to dt.
func ParseValue(dt DataType, raw string) (*Value, error) {
	v := &Value{Text: raw}

	if !dt.IsArray() {
		compact := strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, raw)
		if strings.Contains(compact, nodeIDMarker) {
			v.NodeIDRelative = true
			compact = strings.Replace(compact, nodeIDMarker, "", 1)
		}
		v.Text = compact
	}

	switch {
	case dt == BOOL:
		b, err := strconv.ParseBool(v.Text)
		if err != nil {
			n, ok := parseInt(v.Text)
			if !ok || (n.Sign() != 0 && n.Cmp(big.NewInt(1)) != 0) {
				return nil, fieldError("default", "bad boolean "+quote(raw))
			}
			b = n.Sign() != 0
		}
		v.Int = big.NewInt(0)
		if b {
			v.Int.SetInt64(1)
		}
	case dt.IsInteger() || dt.IsTime():
		n, ok := parseInt(v.Text)
		if !ok {
			return nil, fieldError("default", "bad integer "+quote(raw))
		}
		v.Int = n
	case dt.IsReal():
		bits := 64
		if dt == REAL32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(v.Text, bits)
		if err != nil {
			return nil, fieldError("default", "bad real "+quote(raw))
		}
		v.Real = f
	case dt == OSTRING:
		octets := strings.Join(strings.Fields(raw), "")
		octets = strings.ReplaceAll(octets, "0x", "")
		b, err := hex.DecodeString(octets)
		if err != nil {
			return nil, fieldError("default", "bad octet string "+quote(raw))
		}
		v.Bytes = b
	}
	return v, nil
}

// parseInt accepts decimal or 0x-prefixed hexadecimal, optionally negative.
func parseInt(s string) (*big.Int, bool) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	}
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		n.Neg(n)
	}
	return n, true
}

// ParseIndex parses a hexadecimal index or sub-index token as used in section
// names, with or without a 0x prefix.
func ParseIndex(s string, bits int) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	n, err := strconv.ParseUint(s, 16, bits)
	if err != nil {
		return 0, fieldError("index", "bad index "+quote(s))
	}
	return int(n), nil
}
