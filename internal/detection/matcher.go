// Package detection implements the keyword matchers behind the awareness and
// misinformation endpoints.
//
// Matching is case-insensitive substring containment. It is not word-boundary
// aware: "banking" matches "bank".
package detection

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matcher checks text against a fixed list of terms
type Matcher struct {
	name  string
	terms []string
}

// NewMatcher builds a matcher. Terms are lower-cased once here; empty terms are dropped.
func NewMatcher(name string, terms ...string) *Matcher {
	m := &Matcher{name: name, terms: make([]string, 0, len(terms))}
	for _, t := range terms {
		if t = lower(t); t != "" {
			m.terms = append(m.terms, t)
		}
	}
	return m
}

// Name identifies the matcher in logs
func (m *Matcher) Name() string { return m.name }

// Terms returns a copy of the matcher list
func (m *Matcher) Terms() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// Match returns the terms contained in text, in list order.
// The result is never nil.
func (m *Matcher) Match(text string) []string {
	found := make([]string, 0, len(m.terms))
	if text == "" {
		return found
	}
	folded := lower(text)
	for _, t := range m.terms {
		if strings.Contains(folded, t) {
			found = append(found, t)
		}
	}
	return found
}

// cases.Caser is stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
