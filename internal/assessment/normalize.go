// internal/assessment/normalize.go
package assessment

import (
	"strings"
	"unicode"
)

// NormalizeProcessName lowercases s, turns every rune that is not a letter
// or digit into a space and collapses runs of spaces.
//
//	"Pocket join (Kangaro)" -> "pocket join kangaro"
//	"Zipper-Join 2nd"       -> "zipper join 2nd"
func NormalizeProcessName(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// MatchesKeyword reports whether the normalized keyword occurs in the
// normalized process name on whole-token boundaries, so "neck join" matches
// "Back Neck Join" but not "neck joining".
func MatchesKeyword(processName, keyword string) bool {
	kw := NormalizeProcessName(keyword)
	if kw == "" {
		return false
	}
	name := " " + NormalizeProcessName(processName) + " "
	return strings.Contains(name, " "+kw+" ")
}
