// Package topicmine extracts ranked, de-duplicated topics from a batch of
// timestamped newsletter issues.
package topicmine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/cluster"
	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/excerpt"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/keyphrase"
	"github.com/cognicore/topicmine/pkg/topicmine/lexical"
	"github.com/cognicore/topicmine/pkg/topicmine/recency"
	"github.com/cognicore/topicmine/pkg/topicmine/semantic"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
	"github.com/cognicore/topicmine/pkg/topicmine/store"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// Engine is the topic extraction facade
type Engine struct {
	store    store.Store
	lexical  *lexical.Extractor
	semantic *semantic.Extractor
	cards    *excerpt.Builder
	logger   *log.Logger
}

// Options configures an Engine. Every field is optional.
type Options struct {
	// Store persists documents and runs; Ingest, Recent and Record need it.
	// The engine closes it on Close.
	Store    store.Store
	Stoplist *stoplist.Manager
	Weighter *recency.Weighter
	// Embedder enables ExtractSemantic. It belongs to the caller and is not
	// closed by the engine.
	Embedder       embed.Embedder
	Scorer         keyphrase.Scorer
	Linkage        cluster.Linkage
	AlternateNGram ingest.Range
	Logger         *log.Logger
}

// LexicalRequest is one call to the lexical backend
type LexicalRequest struct {
	NumTopics int
	// PreserveOrder returns cluster order instead of descending score
	PreserveOrder bool
}

// SemanticRequest is one call to the semantic backend
type SemanticRequest struct {
	NumTopics     int
	NGramRange    ingest.Range
	CandidatePool int
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	logger := logging.OrDiscard(opts.Logger)
	if opts.Stoplist == nil {
		opts.Stoplist = stoplist.NewDefaultManager()
	}
	if opts.Weighter == nil {
		wopts := recency.DefaultOptions()
		wopts.Logger = logger
		opts.Weighter = recency.NewWeighter(wopts)
	}

	e := &Engine{
		store:  opts.Store,
		cards:  excerpt.NewBuilder(),
		logger: logger,
	}
	e.lexical = lexical.New(lexical.Options{
		Stoplist: opts.Stoplist,
		Weighter: opts.Weighter,
		Logger:   logger,
	})

	if opts.Embedder != nil {
		sem, err := semantic.New(semantic.Options{
			Embedder:       opts.Embedder,
			Scorer:         opts.Scorer,
			Stoplist:       opts.Stoplist,
			Weighter:       opts.Weighter,
			Lexical:        e.lexical,
			Linkage:        opts.Linkage,
			AlternateNGram: opts.AlternateNGram,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("topicmine: %w", err)
		}
		e.semantic = sem
	}
	return e, nil
}

// Close cleanly shuts down the engine and its store
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// ExtractLexical runs the frequency-based backend
func (e *Engine) ExtractLexical(ctx context.Context, docs []ingest.Document, req LexicalRequest) ([]topics.Topic, error) {
	return e.lexical.Extract(ctx, docs, lexical.Request{
		NumTopics:     req.NumTopics,
		PreserveOrder: req.PreserveOrder,
	})
}

// ExtractSemantic runs the embedding backend and its fallback chain
func (e *Engine) ExtractSemantic(ctx context.Context, docs []ingest.Document, req SemanticRequest) ([]topics.Topic, error) {
	if e.semantic == nil {
		return nil, fmt.Errorf("topicmine: semantic backend needs an embedder: %w", internalerr.ErrInvalidConfig)
	}
	return e.semantic.Extract(ctx, docs, semantic.Request{
		NumTopics:     req.NumTopics,
		NGram:         req.NGramRange,
		CandidatePool: req.CandidatePool,
	})
}

// Cards pairs each topic with an example sentence from docs
func (e *Engine) Cards(ts []topics.Topic, docs []ingest.Document) []excerpt.Card {
	return e.cards.BuildAll(ts, docs)
}

// Ingest validates and stores a document
func (e *Engine) Ingest(ctx context.Context, d ingest.Document) error {
	if e.store == nil {
		return fmt.Errorf("topicmine: ingest: %w", internalerr.ErrStoreUnavailable)
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("topicmine: ingest %s: %v: %w", d.ID, err, internalerr.ErrInvalidInput)
	}
	if _, ok, err := d.Time(); err != nil || !ok {
		e.logger.Warn("storing undated document", "id", d.ID, "date", d.Date, "err", err)
	}
	return e.store.UpsertDoc(ctx, store.FromDocument(d))
}

// Recent loads stored documents published at or after since, newest first
func (e *Engine) Recent(ctx context.Context, since time.Time, limit int) ([]ingest.Document, error) {
	if e.store == nil {
		return nil, fmt.Errorf("topicmine: recent: %w", internalerr.ErrStoreUnavailable)
	}
	docs, err := e.store.DocsSince(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	return store.Documents(docs), nil
}

// RunInfo describes an extraction to record
type RunInfo struct {
	Backend   string
	NumTopics int
	DocCount  int
	Since     time.Time
}

// Record stores a run and returns its id
func (e *Engine) Record(ctx context.Context, info RunInfo, ts []topics.Topic) (string, error) {
	if e.store == nil {
		return "", fmt.Errorf("topicmine: record: %w", internalerr.ErrStoreUnavailable)
	}
	now := time.Now()
	run := store.Run{
		ID:        store.NewRunID(now),
		CreatedAt: now,
		Backend:   info.Backend,
		NumTopics: info.NumTopics,
		DocCount:  info.DocCount,
		Since:     info.Since,
		Topics:    store.RunTopics(ts),
	}
	if err := e.store.SaveRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}
