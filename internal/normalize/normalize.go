// Package normalize folds names and queries into a comparable form: Unicode
// canonical decomposition drops combining marks, a fixed Vietnamese table
// folds the remaining diacritics (including đ/Đ, which NFD alone can't
// strip), and the result is lowercased with whitespace collapsed. It backs
// both indexed search (internal/store) and live search (internal/livesearch).
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// vietnameseFold maps decomposed Vietnamese base letters (after NFD has
// already stripped their diacritic marks, which leaves đ/Đ untouched since
// those are precomposed letters, not base+mark) to their plain ASCII form.
var vietnameseFold = map[rune]rune{
	'đ': 'd', 'Đ': 'D',
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// String folds s into a normalized, lowercased, whitespace-collapsed form:
// decompose, drop combining marks, fold the remaining Vietnamese letters,
// keep only alphanumerics and whitespace, lowercase, collapse runs of
// whitespace. Pure, total, deterministic, and idempotent.
func String(s string) string {
	decomposed, _, err := transform.String(stripMarks, s)
	if err != nil {
		decomposed = s
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if folded, ok := vietnameseFold[r]; ok {
			r = folded
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// ContainsAllTokens reports whether every token is a substring of haystack.
// An empty token set matches everything.
func ContainsAllTokens(haystack string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(haystack, tok) {
			return false
		}
	}
	return true
}

// Tokens splits an already-normalized query on whitespace.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}
