package ingest

import (
	"strings"
	"unicode"
)

// MinTokenLen is the shortest token kept; shorter words carry little topical signal.
const MinTokenLen = 4

// Tokenizer handles text tokenization and normalization
type Tokenizer struct {
	stopwords map[string]struct{}
	minLen    int
}

// NewTokenizer creates a new tokenizer with the given stopword list
func NewTokenizer(stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{stopwords: stops, minLen: MinTokenLen}
}

// Tokenize splits text into lowercase alphabetic tokens, dropping stopwords
// and tokens shorter than MinTokenLen.
//
// Words are split at any rune that is neither letter nor digit, so
// "machine-learning" yields two tokens. A piece containing digits ("claude3")
// is dropped entirely.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder
	tainted := false

	flush := func() {
		if current.Len() > 0 && !tainted {
			if word := t.processToken(current.String()); word != "" {
				tokens = append(tokens, word)
			}
		}
		current.Reset()
		tainted = false
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			current.WriteRune(unicode.ToLower(r))
		case unicode.IsDigit(r):
			tainted = true
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// processToken applies length and stopword filtering.
func (t *Tokenizer) processToken(word string) string {
	if len([]rune(word)) < t.minLen {
		return ""
	}
	if t.IsStopword(word) {
		return ""
	}
	return word
}

// IsStopword reports whether word is in the stopword list.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// SetMinLen overrides the minimum token length. Values below 1 are ignored.
func (t *Tokenizer) SetMinLen(n int) {
	if n >= 1 {
		t.minLen = n
	}
}
