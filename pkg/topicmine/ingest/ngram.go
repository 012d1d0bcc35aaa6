package ingest

import "strings"

// Range is an inclusive n-gram length range, e.g. {1, 3} for unigrams to trigrams.
type Range struct {
	Min int
	Max int
}

// Valid reports whether r describes at least one n-gram length.
func (r Range) Valid() bool {
	return r.Min >= 1 && r.Max >= r.Min
}

// NGram is one contiguous token window joined with single spaces.
type NGram struct {
	Phrase string
	N      int
}

// NGrams returns every contiguous window of tokens whose length falls in r,
// in order of position and then length.
func NGrams(tokens []string, r Range) []NGram {
	if !r.Valid() || len(tokens) == 0 {
		return nil
	}

	var out []NGram
	for i := range tokens {
		for n := r.Min; n <= r.Max; n++ {
			if i+n > len(tokens) {
				break
			}
			out = append(out, NGram{
				Phrase: strings.Join(tokens[i:i+n], " "),
				N:      n,
			})
		}
	}
	return out
}

// PhraseTokens splits a phrase back into its tokens.
func PhraseTokens(phrase string) []string {
	return strings.Fields(phrase)
}
