package textmatch

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

// Decode unescapes HTML entities that guide feeds leave in titles ("Tom &amp; Jerry").
func Decode(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}

// Fold returns the case-folded, entity-decoded form of s.
func Fold(s string) string {
	return cases.Fold().String(Decode(s))
}

// romanize folds and transliterates s to ASCII so "Café" and "Cafe" compare equal.
func romanize(s string) string {
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(Decode(s))))
}

// Matcher performs case-insensitive substring matching for one search term.
// The zero value matches everything.
type Matcher struct {
	folded    string
	romanized string
}

// NewMatcher prepares a matcher for term. Blank terms match everything.
func NewMatcher(term string) Matcher {
	term = strings.TrimSpace(term)
	if term == "" {
		return Matcher{}
	}
	return Matcher{folded: Fold(term), romanized: romanize(term)}
}

// Empty reports whether the matcher accepts every input.
func (m Matcher) Empty() bool {
	return m.folded == ""
}

// Match reports whether any of fields contains the term. Empty fields never match.
func (m Matcher) Match(fields ...string) bool {
	if m.Empty() {
		return true
	}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(Fold(f), m.folded) {
			return true
		}
		if m.romanized != "" && strings.Contains(romanize(f), m.romanized) {
			return true
		}
	}
	return false
}
