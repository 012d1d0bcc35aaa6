// Package candidates builds the weighted phrase table for lexical topic mining.
package candidates

import (
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
)

// Options holds the signal multipliers
type Options struct {
	// BodyRange is the n-gram range mined from bodies and subjects.
	BodyRange ingest.Range
	// LengthMultipliers scale n-gram counts by length (index = n).
	LengthMultipliers []float64
	// SubjectStreamMultiplier scales subject tokens inside the main stream.
	SubjectStreamMultiplier float64
	// SubjectWindow is the window range for subject-derived phrases.
	SubjectWindow ingest.Range
	// SubjectPhraseMultiplier scales subject-derived phrases in the final table.
	SubjectPhraseMultiplier float64
	// BreakingMultiplier applies when a subject carries an urgency indicator.
	BreakingMultiplier float64
}

// DefaultOptions returns the standard multipliers: bigrams x2, trigrams x3,
// subject stream x5, subject phrases x10, breaking news x3.
func DefaultOptions() Options {
	return Options{
		BodyRange:               ingest.Range{Min: 1, Max: 3},
		LengthMultipliers:       []float64{0, 1, 2, 3},
		SubjectStreamMultiplier: 5,
		SubjectWindow:           ingest.Range{Min: 2, Max: 4},
		SubjectPhraseMultiplier: 10,
		BreakingMultiplier:      3,
	}
}

// Generator turns documents and recency weights into a candidate table
type Generator struct {
	tokenizer *ingest.Tokenizer
	stops     *stoplist.Manager
	opts      Options
}

// NewGenerator creates a generator. A zero Options value means DefaultOptions.
func NewGenerator(stops *stoplist.Manager, opts Options) *Generator {
	if !opts.BodyRange.Valid() {
		opts = DefaultOptions()
	}
	return &Generator{
		tokenizer: ingest.NewTokenizer(stops.Stopwords()),
		stops:     stops,
		opts:      opts,
	}
}

// Generate builds the combined table. weights[i] is the recency weight of
// docs[i]; a missing weight counts as 1.
//
// Every n-gram occurrence adds weight x length multiplier. Subject tokens join
// the stream with an extra SubjectStreamMultiplier, and 2-4 token windows of the
// cleaned subject add weight x breaking multiplier x SubjectPhraseMultiplier.
func (g *Generator) Generate(docs []ingest.Document, weights []float64) *Table {
	table := NewTable()
	for i := range docs {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		g.addStream(table, docs[i].Body, w)
		g.addStream(table, docs[i].Subject, w*g.opts.SubjectStreamMultiplier)
		g.addSubjectPhrases(table, docs[i].Subject, w)
	}
	return table
}

func (g *Generator) addStream(table *Table, text string, w float64) {
	tokens := g.tokenizer.Tokenize(text)
	for _, ng := range ingest.NGrams(tokens, g.opts.BodyRange) {
		table.Add(ng.Phrase, w*g.lengthMultiplier(ng.N))
	}
}

func (g *Generator) addSubjectPhrases(table *Table, subject string, w float64) {
	multiplier := 1.0
	if g.stops.IsBreaking(subject) {
		multiplier = g.opts.BreakingMultiplier
	}

	tokens := g.tokenizer.Tokenize(ingest.CleanSubject(subject))
	if len(tokens) < 2 {
		return
	}
	for _, ng := range ingest.NGrams(tokens, g.opts.SubjectWindow) {
		table.Add(ng.Phrase, w*multiplier*g.opts.SubjectPhraseMultiplier)
	}
}

func (g *Generator) lengthMultiplier(n int) float64 {
	if n < len(g.opts.LengthMultipliers) {
		return g.opts.LengthMultipliers[n]
	}
	return float64(n)
}
