// Package textnorm normalizes player and team names so sources that spell
// them differently ("José Berríos", "Jose Berrios", "BERRIOS, JOSE") can be
// matched.
package textnorm

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips accents and punctuation and collapses spaces.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r == '\'' || r == '.' || r == '’':
			// "O'Brien" and "J.P." fold to "obrien" and "jp".
		default:
			space = true
		}
	}
	return b.String()
}

func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Contains reports whether the folded haystack contains the folded needle.
func Contains(haystack, needle string) bool {
	n := Fold(needle)
	if n == "" {
		return false
	}
	return strings.Contains(Fold(haystack), n)
}

// MatchName reports whether candidate and query name the same player: equal
// after folding, or one contained in the other.
func MatchName(candidate, query string) bool {
	c := Fold(candidate)
	q := Fold(query)
	if c == "" || q == "" {
		return false
	}
	return c == q || strings.Contains(c, q) || strings.Contains(q, c)
}

// LastName returns the folded final token of a name.
func LastName(name string) string {
	fields := strings.Fields(Fold(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// SearchQuery formats a name for a "+"-joined search URL parameter. Each
// word is query-escaped.
func SearchQuery(name string) string {
	fields := strings.Fields(name)
	for i, field := range fields {
		fields[i] = url.QueryEscape(field)
	}
	return strings.Join(fields, "+")
}
