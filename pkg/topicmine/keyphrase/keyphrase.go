// Package keyphrase ranks candidate phrases by how close their embedding sits
// to the embedding of the whole corpus.
package keyphrase

import (
	"context"
	"fmt"
	"sort"

	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
)

// Defaults
const (
	DefaultTopN          = 30
	DefaultMaxVocabulary = 400
)

// Keyphrase is a phrase with its relevance to the corpus
type Keyphrase struct {
	Phrase string
	Score  float64
}

// Options controls one extraction
type Options struct {
	NGram ingest.Range
	TopN  int
	// MaxVocabulary caps how many candidates are embedded; the most frequent
	// (recency-weighted) candidates are kept.
	MaxVocabulary int
}

// DefaultOptions returns unigrams to trigrams, top 30.
func DefaultOptions() Options {
	return Options{
		NGram:         ingest.Range{Min: 1, Max: 3},
		TopN:          DefaultTopN,
		MaxVocabulary: DefaultMaxVocabulary,
	}
}

// Scorer is a keyphrase-scoring model. texts[i] carries weight weights[i].
type Scorer interface {
	Extract(ctx context.Context, texts []string, weights []float64, opts Options) ([]Keyphrase, error)
}

// Extractor scores n-gram candidates against a recency-weighted corpus
// embedding (the weighted mean of per-text embeddings) by cosine similarity.
type Extractor struct {
	embedder  embed.Embedder
	tokenizer *ingest.Tokenizer
}

// NewExtractor creates an extractor. Candidate n-grams are formed after the
// stopwords are removed, from tokens of two or more letters.
func NewExtractor(e embed.Embedder, stopwords []string) *Extractor {
	tok := ingest.NewTokenizer(stopwords)
	tok.SetMinLen(2)
	return &Extractor{embedder: e, tokenizer: tok}
}

// Extract implements Scorer. Embedding failures are returned as is.
func (x *Extractor) Extract(ctx context.Context, texts []string, weights []float64, opts Options) ([]Keyphrase, error) {
	if !opts.NGram.Valid() {
		return nil, fmt.Errorf("keyphrase: n-gram range %d-%d: %w", opts.NGram.Min, opts.NGram.Max, internalerr.ErrInvalidInput)
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.MaxVocabulary <= 0 {
		opts.MaxVocabulary = DefaultMaxVocabulary
	}

	vocab := x.vocabulary(texts, weights, opts)
	if len(vocab) == 0 {
		return nil, nil
	}

	docVecs, err := embed.EmbedAll(ctx, x.embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("keyphrase: embed corpus: %w", err)
	}
	corpus, err := embed.WeightedMean(docVecs, weights)
	if err != nil {
		return nil, fmt.Errorf("keyphrase: corpus vector: %w", err)
	}

	candVecs, err := embed.EmbedAll(ctx, x.embedder, vocab)
	if err != nil {
		return nil, fmt.Errorf("keyphrase: embed candidates: %w", err)
	}

	out := make([]Keyphrase, len(vocab))
	for i, phrase := range vocab {
		out[i] = Keyphrase{Phrase: phrase, Score: embed.CosineSimilarity(corpus, candVecs[i])}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Phrase < out[j].Phrase
	})
	if len(out) > opts.TopN {
		out = out[:opts.TopN]
	}
	return out, nil
}

// vocabulary returns the distinct candidate phrases, most frequent first.
func (x *Extractor) vocabulary(texts []string, weights []float64, opts Options) []string {
	counts := make(map[string]float64)
	for i, text := range texts {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		for _, ng := range ingest.NGrams(x.tokenizer.Tokenize(text), opts.NGram) {
			counts[ng.Phrase] += w
		}
	}

	vocab := make([]string, 0, len(counts))
	for p := range counts {
		vocab = append(vocab, p)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if counts[vocab[i]] != counts[vocab[j]] {
			return counts[vocab[i]] > counts[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if len(vocab) > opts.MaxVocabulary {
		vocab = vocab[:opts.MaxVocabulary]
	}
	return vocab
}
