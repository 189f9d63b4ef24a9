package od

import (
	"strings"
	"unicode"
)

func nameTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
}

// ToUID converts an entry name to its generated C identifier: every token
// gets an upper-case first character, the rest is kept verbatim. A name made
// of a single one-character token is returned unchanged.
func ToUID(s string) string {
	words := nameTokens(s)
	if len(words) == 1 && len([]rune(words[0])) == 1 {
		return words[0]
	}

	var result strings.Builder
	for _, word := range words {
		r := []rune(word)
		result.WriteRune(unicode.ToUpper(r[0]))
		result.WriteString(string(r[1:]))
	}
	return result.String()
}

// ToMacroName converts a name to an upper-case C macro fragment; every run of
// characters that is not a letter or digit becomes one underscore.
func ToMacroName(s string) string {
	words := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "_")
}
