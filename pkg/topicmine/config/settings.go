package config

import (
	"fmt"
	"time"

	"github.com/cognicore/topicmine/pkg/topicmine/cluster"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/recency"
)

// Embedder backends
const (
	EmbedderHashing = "hashing"
	EmbedderOllama  = "ollama"
)

// Settings is the engine configuration as read from topicmine.yaml
type Settings struct {
	Vocabulary string           `mapstructure:"vocabulary" yaml:"vocabulary"`
	Recency    RecencySettings  `mapstructure:"recency" yaml:"recency"`
	Semantic   SemanticSettings `mapstructure:"semantic" yaml:"semantic"`
	Embedder   EmbedderSettings `mapstructure:"embedder" yaml:"embedder"`
}

// RecencySettings configures document weighting
type RecencySettings struct {
	MinWeight float64 `mapstructure:"min_weight" yaml:"min_weight"`
	MaxWeight float64 `mapstructure:"max_weight" yaml:"max_weight"`
	Undated   string  `mapstructure:"undated" yaml:"undated"`
	Disabled  bool    `mapstructure:"disabled" yaml:"disabled"`
}

// SemanticSettings configures the embedding backend
type SemanticSettings struct {
	Linkage       string `mapstructure:"linkage" yaml:"linkage"`
	CandidatePool int    `mapstructure:"candidate_pool" yaml:"candidate_pool"`
	NGramMin      int    `mapstructure:"ngram_min" yaml:"ngram_min"`
	NGramMax      int    `mapstructure:"ngram_max" yaml:"ngram_max"`
	AltNGramMin   int    `mapstructure:"alt_ngram_min" yaml:"alt_ngram_min"`
	AltNGramMax   int    `mapstructure:"alt_ngram_max" yaml:"alt_ngram_max"`
}

// EmbedderSettings selects and configures the embedding model
type EmbedderSettings struct {
	Backend           string        `mapstructure:"backend" yaml:"backend"`
	Dims              int           `mapstructure:"dims" yaml:"dims"`
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	Model             string        `mapstructure:"model" yaml:"model"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// DefaultSettings returns the built-in configuration
func DefaultSettings() Settings {
	return Settings{
		Recency: RecencySettings{
			MinWeight: recency.DefaultMinWeight,
			MaxWeight: recency.DefaultMaxWeight,
			Undated:   string(recency.UndatedAsNow),
		},
		Semantic: SemanticSettings{
			Linkage:       string(cluster.LinkageWard),
			CandidatePool: 30,
			NGramMin:      1,
			NGramMax:      3,
			AltNGramMin:   1,
			AltNGramMax:   2,
		},
		Embedder: EmbedderSettings{
			Backend: EmbedderHashing,
			Timeout: 60 * time.Second,
		},
	}
}

// Validate checks the settings for values no component would accept
func (s Settings) Validate() error {
	if s.Recency.MinWeight < 0 || s.Recency.MaxWeight < 0 {
		return fmt.Errorf("recency weights must not be negative: %w", internalerr.ErrInvalidConfig)
	}
	if s.Recency.MaxWeight > 0 && s.Recency.MinWeight > s.Recency.MaxWeight {
		return fmt.Errorf("recency min_weight %.2f above max_weight %.2f: %w",
			s.Recency.MinWeight, s.Recency.MaxWeight, internalerr.ErrInvalidConfig)
	}
	if _, err := recency.ParseUndatedPolicy(s.Recency.Undated); err != nil {
		return err
	}
	if _, err := cluster.ParseLinkage(s.Semantic.Linkage); err != nil {
		return err
	}
	if s.Semantic.CandidatePool < 0 {
		return fmt.Errorf("candidate_pool %d: %w", s.Semantic.CandidatePool, internalerr.ErrInvalidConfig)
	}
	if s.Semantic.NGramMin < 0 || s.Semantic.NGramMax < s.Semantic.NGramMin {
		return fmt.Errorf("ngram range %d-%d: %w", s.Semantic.NGramMin, s.Semantic.NGramMax, internalerr.ErrInvalidConfig)
	}
	if s.Semantic.AltNGramMin < 0 || s.Semantic.AltNGramMax < s.Semantic.AltNGramMin {
		return fmt.Errorf("alternate ngram range %d-%d: %w", s.Semantic.AltNGramMin, s.Semantic.AltNGramMax, internalerr.ErrInvalidConfig)
	}
	switch s.Embedder.Backend {
	case "", EmbedderHashing, EmbedderOllama:
	default:
		return fmt.Errorf("unknown embedder backend %q: %w", s.Embedder.Backend, internalerr.ErrInvalidConfig)
	}
	return nil
}
