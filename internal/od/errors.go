package od

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error kinds. Every error produced by this package wraps exactly one of them.
var (
	// ErrValue is a malformed or out-of-range field value.
	ErrValue = errors.New("value error")
	// ErrDuplicate is an index, feature name or generated identifier collision.
	ErrDuplicate = errors.New("duplicate error")
	// ErrStructure is an illegal nesting or a double feature assignment.
	ErrStructure = errors.New("structure error")
	// ErrType is a value of the wrong type inserted into a Directory.
	ErrType = errors.New("type error")
	// ErrRange is a feature descriptor with non-increasing bounds or a bad step.
	ErrRange = errors.New("range error")
)

// NoIndex marks an Error that is not tied to a dictionary index.
const NoIndex = -1

// Error carries the offending index and name along with its kind. Index and
// Subindex are NoIndex when not applicable.
type Error struct {
	Kind     error
	Index    int
	Subindex int
	Name     string
	Field    string
	Msg      string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Index != NoIndex {
		fmt.Fprintf(&b, " at 0x%04x", e.Index)
		if e.Subindex != NoIndex {
			fmt.Fprintf(&b, ".%02x", e.Subindex)
		}
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " (%s)", e.Name)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " [%s]", e.Field)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, index, subindex int, name, field, msg string) *Error {
	return &Error{Kind: kind, Index: index, Subindex: subindex, Name: name, Field: field, Msg: msg}
}

func fieldError(field, msg string) *Error {
	return newError(ErrValue, NoIndex, NoIndex, "", field, msg)
}

// at fills in the location of an Error raised by a context-free helper such
// as the enumeration parsers.
func at(err error, index, subindex int, name string) error {
	var oe *Error
	if errors.As(err, &oe) && oe.Index == NoIndex {
		oe.Index = index
		oe.Subindex = subindex
		oe.Name = name
	}
	return err
}

func quote(s string) string { return strconv.Quote(s) }
