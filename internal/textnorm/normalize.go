// Package textnorm canonicalizes user text before any pattern matching.
// Every regex rule and alias table in the agent is authored against the
// output of Normalize.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize lowercases, strips diacritical marks, collapses whitespace
// runs to single spaces and trims. It is total: empty input yields "".
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = stripMarks(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripMarks decomposes to NFD and drops combining marks, so "são" and
// "sao" compare equal downstream.
func stripMarks(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
