package config

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/cluster"
	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/recency"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
)

// Loader loads configuration files and constructs components
type Loader struct {
	Settings Settings
	// ExtraStopwords are added to the noise vocabulary, e.g. the stoplist
	// kept in the store.
	ExtraStopwords []string
	Logger         *log.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Vocabulary     stoplist.Vocabulary
	Stoplist       *stoplist.Manager
	Weighter       *recency.Weighter
	Embedder       embed.Embedder
	Linkage        cluster.Linkage
	NGram          ingest.Range
	AlternateNGram ingest.Range
	CandidatePool  int
}

// Load reads the vocabulary file, if any, and returns initialized components.
// The returned Embedder belongs to the caller.
func (l *Loader) Load() (*Components, error) {
	if err := l.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.OrDiscard(l.Logger)
	comp := &Components{}

	// Load vocabulary
	vocab := stoplist.DefaultVocabulary()
	if l.Settings.Vocabulary != "" {
		overrides, err := LoadVocabulary(l.Settings.Vocabulary)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		vocab = overrides.Apply(vocab)
	}
	if len(l.ExtraStopwords) > 0 {
		vocab = vocab.Merge(stoplist.Vocabulary{Noise: l.ExtraStopwords})
	}
	comp.Vocabulary = vocab
	comp.Stoplist = stoplist.NewManager(vocab)

	// Recency weighting
	undated, err := recency.ParseUndatedPolicy(l.Settings.Recency.Undated)
	if err != nil {
		return nil, err
	}
	comp.Weighter = recency.NewWeighter(recency.Options{
		MinWeight: l.Settings.Recency.MinWeight,
		MaxWeight: l.Settings.Recency.MaxWeight,
		Undated:   undated,
		Disabled:  l.Settings.Recency.Disabled,
		Logger:    logger,
	})

	// Semantic backend
	if comp.Linkage, err = cluster.ParseLinkage(l.Settings.Semantic.Linkage); err != nil {
		return nil, err
	}
	comp.NGram = ingest.Range{Min: l.Settings.Semantic.NGramMin, Max: l.Settings.Semantic.NGramMax}
	comp.AlternateNGram = ingest.Range{Min: l.Settings.Semantic.AltNGramMin, Max: l.Settings.Semantic.AltNGramMax}
	comp.CandidatePool = l.Settings.Semantic.CandidatePool

	comp.Embedder = NewEmbedder(l.Settings.Embedder)
	return comp, nil
}

// NewEmbedder builds the embedder the settings select
func NewEmbedder(s EmbedderSettings) embed.Embedder {
	switch s.Backend {
	case EmbedderOllama:
		return embed.NewOllamaEmbedder(embed.OllamaOptions{
			Endpoint:          s.Endpoint,
			Model:             s.Model,
			Timeout:           s.Timeout,
			RequestsPerSecond: s.RequestsPerSecond,
		})
	default:
		return embed.NewHashingEmbedder(s.Dims)
	}
}
