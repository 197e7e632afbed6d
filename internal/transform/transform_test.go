package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"single without terminal", "just words", []string{"just words"}},
		{"three sentences", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"collapses whitespace", "One.\n\n  Two   words.", []string{"One.", "Two words."}},
		{"terminal runs", "Wait... what?! Ok", []string{"Wait...", "what?!", "Ok"}},
		{"dot inside token", "Version 1.2 shipped. Done", []string{"Version 1.2 shipped.", "Done"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sentences(tt.in))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "", Summarize(""))
	assert.Equal(t, "Short text", Summarize("  Short   text "))
	assert.Equal(t, "First. Second.", Summarize("First. Second. Third. Fourth."))
}

func TestSummarize_Deterministic(t *testing.T) {
	in := "Alpha beta. Gamma delta! Epsilon?"
	assert.Equal(t, Summarize(in), Summarize(in))
}

func TestRephrase(t *testing.T) {
	assert.Equal(t, "", Rephrase(""))
	assert.Equal(t, "Hello there. How are you?", Rephrase("hello   there. how are you?"))
	assert.Equal(t, "Already Fine.", Rephrase("Already Fine."))
	assert.Equal(t, "\"Quoted\" start.", Rephrase("\"quoted\" start."))
	assert.Equal(t, "Élan vital.", Rephrase("élan vital."))
}
