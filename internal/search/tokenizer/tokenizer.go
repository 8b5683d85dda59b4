// Package tokenizer normalises raw text into index terms. It lower-cases
// input, splits on runs of non-alphanumeric runes, and discards terms below
// a configurable minimum length. No stemming and no stop-word removal: the
// same Tokenizer instance is used at index time and query time, so any
// normalisation applied here is applied symmetrically.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenizer holds the normalisation parameters.
type Tokenizer struct {
	minTokenLen int
}

// New creates a Tokenizer. minTokenLen below 1 is treated as 1.
func New(minTokenLen int) *Tokenizer {
	if minTokenLen < 1 {
		minTokenLen = 1
	}
	return &Tokenizer{minTokenLen: minTokenLen}
}

// Tokenize breaks text into a slice of lowercased terms. An empty or
// punctuation-only input yields an empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if len([]rune(word)) < t.minTokenLen {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// Distinct tokenizes text and deduplicates the result, preserving first
// occurrence order. Used for queries, where the coverage score counts each
// distinct term once.
func (t *Tokenizer) Distinct(text string) []string {
	terms := t.Tokenize(text)
	seen := make(map[string]struct{}, len(terms))
	distinct := terms[:0]
	for _, term := range terms {
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		distinct = append(distinct, term)
	}
	return distinct
}
