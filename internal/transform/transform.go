// Package transform holds the placeholder text transforms behind /transform.
// Both functions are deterministic and total.
package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SummarySentences is how many leading sentences Summarize keeps
const SummarySentences = 2

// Summarize keeps the first SummarySentences sentences of the whitespace-normalized text
func Summarize(text string) string {
	sentences := Sentences(text)
	if len(sentences) > SummarySentences {
		sentences = sentences[:SummarySentences]
	}
	return strings.Join(sentences, " ")
}

// Rephrase normalizes whitespace and starts every sentence with an upper-case letter
func Rephrase(text string) string {
	sentences := Sentences(text)
	for i, s := range sentences {
		sentences[i] = capitalize(s)
	}
	return strings.Join(sentences, " ")
}

// Sentences splits whitespace-normalized text after '.', '!' or '?' runs that are
// followed by a space or the end of input.
func Sentences(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil
	}

	var out []string
	start := 0
	for i := 0; i < len(normalized); i++ {
		if !isTerminal(normalized[i]) {
			continue
		}
		j := i
		for j+1 < len(normalized) && isTerminal(normalized[j+1]) {
			j++
		}
		if j+1 == len(normalized) || normalized[j+1] == ' ' {
			out = append(out, normalized[start:j+1])
			start = j + 2
		}
		i = j
	}
	if start < len(normalized) {
		out = append(out, normalized[start:])
	}
	return out
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func capitalize(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			if unicode.IsUpper(r) {
				return s
			}
			return s[:i] + string(unicode.ToUpper(r)) + s[i+utf8.RuneLen(r):]
		}
	}
	return s
}
