// Package semantic is the embedding-based topic backend: keyphrases scored
// against the corpus, embedded, and grouped by agglomerative clustering, with
// an ordered chain of fallback strategies when clustering comes up short.
package semantic

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/cluster"
	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/keyphrase"
	"github.com/cognicore/topicmine/pkg/topicmine/lexical"
	"github.com/cognicore/topicmine/pkg/topicmine/recency"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// Defaults
const (
	DefaultCandidatePool = 30
)

// DefaultNGram and AlternateNGram are the primary and fallback keyphrase ranges
var (
	DefaultNGram   = ingest.Range{Min: 1, Max: 3}
	AlternateNGram = ingest.Range{Min: 1, Max: 2}
)

// Options configures an Extractor
type Options struct {
	// Embedder is required. It is owned by the caller.
	Embedder embed.Embedder
	// Scorer ranks keyphrases; a keyphrase.Extractor over Embedder when nil.
	Scorer   keyphrase.Scorer
	Stoplist *stoplist.Manager
	Weighter *recency.Weighter
	// Lexical is the last fallback tier; built from Stoplist and Weighter when nil.
	Lexical        *lexical.Extractor
	Linkage        cluster.Linkage
	AlternateNGram ingest.Range
	Logger         *log.Logger
}

// Request is one semantic extraction call
type Request struct {
	NumTopics int
	// NGram is the keyphrase length range; DefaultNGram when zero.
	NGram ingest.Range
	// CandidatePool is the minimum number of keyphrases considered;
	// DefaultCandidatePool when zero.
	CandidatePool int
}

// Extractor runs the semantic backend
type Extractor struct {
	embedder  embed.Embedder
	scorer    keyphrase.Scorer
	stops     *stoplist.Manager
	weighter  *recency.Weighter
	lexical   *lexical.Extractor
	linkage   cluster.Linkage
	alternate ingest.Range
	logger    *log.Logger
}

// New creates an Extractor
func New(opts Options) (*Extractor, error) {
	if opts.Embedder == nil {
		return nil, fmt.Errorf("semantic: no embedder: %w", internalerr.ErrInvalidConfig)
	}
	logger := logging.OrDiscard(opts.Logger)
	if opts.Stoplist == nil {
		opts.Stoplist = stoplist.NewDefaultManager()
	}
	if opts.Weighter == nil {
		wopts := recency.DefaultOptions()
		wopts.Logger = logger
		opts.Weighter = recency.NewWeighter(wopts)
	}
	if opts.Scorer == nil {
		opts.Scorer = keyphrase.NewExtractor(opts.Embedder, opts.Stoplist.EnglishStopwords())
	}
	if opts.Lexical == nil {
		opts.Lexical = lexical.New(lexical.Options{
			Stoplist: opts.Stoplist,
			Weighter: opts.Weighter,
			Logger:   logger,
		})
	}
	linkage, err := cluster.ParseLinkage(string(opts.Linkage))
	if err != nil {
		return nil, fmt.Errorf("semantic: %w", err)
	}
	if opts.AlternateNGram == (ingest.Range{}) {
		opts.AlternateNGram = AlternateNGram
	}
	if !opts.AlternateNGram.Valid() {
		return nil, fmt.Errorf("semantic: alternate n-gram range %d-%d: %w",
			opts.AlternateNGram.Min, opts.AlternateNGram.Max, internalerr.ErrInvalidConfig)
	}

	return &Extractor{
		embedder:  opts.Embedder,
		scorer:    opts.Scorer,
		stops:     opts.Stoplist,
		weighter:  opts.Weighter,
		lexical:   opts.Lexical,
		linkage:   linkage,
		alternate: opts.AlternateNGram,
		logger:    logger,
	}, nil
}

// Extract returns at most req.NumTopics topics, score-descending.
func (x *Extractor) Extract(ctx context.Context, docs []ingest.Document, req Request) ([]topics.Topic, error) {
	if req.NumTopics < 0 {
		return nil, fmt.Errorf("semantic: num topics %d: %w", req.NumTopics, internalerr.ErrInvalidInput)
	}
	if req.NGram == (ingest.Range{}) {
		req.NGram = DefaultNGram
	}
	if !req.NGram.Valid() {
		return nil, fmt.Errorf("semantic: n-gram range %d-%d: %w", req.NGram.Min, req.NGram.Max, internalerr.ErrInvalidInput)
	}
	if req.CandidatePool < 0 {
		return nil, fmt.Errorf("semantic: candidate pool %d: %w", req.CandidatePool, internalerr.ErrInvalidInput)
	}
	if req.CandidatePool == 0 {
		req.CandidatePool = DefaultCandidatePool
	}
	if req.NumTopics == 0 || len(docs) == 0 {
		return []topics.Topic{}, nil
	}

	corpus := Corpus{Docs: docs, Weights: x.weighter.Weights(docs)}
	return x.Chain(req).Run(ctx, corpus, req.NumTopics)
}

// Chain returns the strategy chain used for req:
// embedding clusters → alternate-range keyphrases → lexical backend
func (x *Extractor) Chain(req Request) *Chain {
	return NewChain(x.logger,
		&EmbeddingStrategy{
			Scorer:   x.scorer,
			Embedder: x.embedder,
			Stops:    x.stops,
			Linkage:  x.linkage,
			NGram:    req.NGram,
			Pool:     req.CandidatePool,
			Logger:   x.logger,
		},
		&KeyphraseStrategy{
			Scorer: x.scorer,
			Stops:  x.stops,
			NGram:  x.alternate,
			Pool:   req.CandidatePool,
			Logger: x.logger,
		},
		&LexicalStrategy{Extractor: x.lexical},
	)
}
