package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/cluster"
	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/keyphrase"
	"github.com/cognicore/topicmine/pkg/topicmine/lexical"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// Corpus is the weighted input shared by every strategy in a chain
type Corpus struct {
	Docs    []ingest.Document
	Weights []float64 // indexed like Docs
}

// Texts returns one text per document: body followed by subject.
func (c Corpus) Texts() []string {
	out := make([]string, len(c.Docs))
	for i, d := range c.Docs {
		out[i] = strings.TrimSpace(d.Body + " " + d.Subject)
	}
	return out
}

// Strategy proposes up to target topics for a corpus.
// Implementations return topics in score-descending order.
type Strategy interface {
	Name() string
	Propose(ctx context.Context, corpus Corpus, target int) ([]topics.Topic, error)
}

// screen drops keyphrases the topic filter rejects. Layout and metadata
// rejections are final. Noise rejections are undone for phrases carrying a
// core domain term when fewer than target phrases would otherwise remain.
func screen(kps []keyphrase.Keyphrase, stops *stoplist.Manager, target int, logger *log.Logger) []keyphrase.Keyphrase {
	logger = logging.OrDiscard(logger)
	var kept, soft []keyphrase.Keyphrase
	for _, kp := range kps {
		if reason, rejected := stops.Check(kp.Phrase); rejected {
			logger.Debug("keyphrase rejected", "phrase", kp.Phrase, "reason", reason.String())
			continue
		}
		if stops.HasNoise(kp.Phrase) {
			soft = append(soft, kp)
			continue
		}
		kept = append(kept, kp)
	}
	if len(kept) >= target || len(soft) == 0 {
		return kept
	}

	restored := 0
	keep := make(map[string]bool, len(kept))
	for _, kp := range kept {
		keep[kp.Phrase] = true
	}
	for _, kp := range soft {
		if stops.HasCoreTerm(kp.Phrase) {
			keep[kp.Phrase] = true
			restored++
		}
	}
	if restored == 0 {
		return kept
	}
	logger.Info("core-term backstop engaged", "kept", len(kept), "restored", restored, "target", target)

	// rebuild in the scorer's order
	out := make([]keyphrase.Keyphrase, 0, len(keep))
	for _, kp := range kps {
		if keep[kp.Phrase] {
			out = append(out, kp)
		}
	}
	return out
}

func toTopics(kps []keyphrase.Keyphrase, src topics.Source) []topics.Topic {
	out := make([]topics.Topic, len(kps))
	for i, kp := range kps {
		out[i] = topics.New(kp.Phrase, nil, nonNegative(kp.Score), src)
	}
	return out
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// EmbeddingStrategy clusters keyphrase embeddings and keeps the best phrase
// of each cluster.
type EmbeddingStrategy struct {
	Scorer   keyphrase.Scorer
	Embedder embed.Embedder
	Stops    *stoplist.Manager
	Linkage  cluster.Linkage
	NGram    ingest.Range
	// Pool is the minimum candidate count; the effective pool is
	// max(Pool, target*5).
	Pool   int
	Logger *log.Logger
}

func (s *EmbeddingStrategy) Name() string { return string(topics.SourceEmbedding) }

// Propose implements Strategy.
func (s *EmbeddingStrategy) Propose(ctx context.Context, corpus Corpus, target int) ([]topics.Topic, error) {
	pool := s.Pool
	if pool < target*5 {
		pool = target * 5
	}
	kps, err := s.Scorer.Extract(ctx, corpus.Texts(), corpus.Weights, keyphrase.Options{
		NGram: s.NGram,
		TopN:  pool,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: extract keyphrases: %w", err)
	}
	kps = screen(kps, s.Stops, target, s.Logger)
	if len(kps) == 0 {
		return nil, nil
	}

	k := min(target, len(kps))
	if k < 2 {
		return toTopics(kps[:k], topics.SourceEmbedding), nil
	}

	phrases := make([]string, len(kps))
	for i, kp := range kps {
		phrases[i] = kp.Phrase
	}
	vecs, err := embed.EmbedAll(ctx, s.Embedder, phrases)
	if err != nil {
		return nil, fmt.Errorf("semantic: embed keyphrases: %w", err)
	}
	for i := range vecs {
		vecs[i] = embed.Normalize(vecs[i])
	}
	labels, err := cluster.Agglomerative{Linkage: s.Linkage}.Fit(ctx, vecs, k)
	if errors.Is(err, internalerr.ErrInvalidInput) {
		return nil, fmt.Errorf("semantic: cluster keyphrases: %v: %w", err, internalerr.ErrBackendUnavailable)
	}
	if err != nil {
		return nil, fmt.Errorf("semantic: cluster keyphrases: %w", err)
	}

	// kps is score-descending, so the first member seen per label is its best.
	seen := make([]bool, k)
	out := make([]topics.Topic, 0, k)
	for i, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, topics.New(kps[i].Phrase, nil, nonNegative(kps[i].Score), topics.SourceEmbedding))
	}
	return topics.Select(out, target, topics.Options{}), nil
}

// KeyphraseStrategy returns the top keyphrases for an alternate n-gram range
// without clustering them.
type KeyphraseStrategy struct {
	Scorer keyphrase.Scorer
	Stops  *stoplist.Manager
	NGram  ingest.Range
	Pool   int
	Logger *log.Logger
}

func (s *KeyphraseStrategy) Name() string { return string(topics.SourceKeyphrase) }

// Propose implements Strategy.
func (s *KeyphraseStrategy) Propose(ctx context.Context, corpus Corpus, target int) ([]topics.Topic, error) {
	pool := s.Pool
	if pool < target*5 {
		pool = target * 5
	}
	kps, err := s.Scorer.Extract(ctx, corpus.Texts(), corpus.Weights, keyphrase.Options{
		NGram: s.NGram,
		TopN:  pool,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic: extract alternate keyphrases: %w", err)
	}
	kps = screen(kps, s.Stops, target, s.Logger)
	return topics.Select(toTopics(kps, topics.SourceKeyphrase), target, topics.Options{}), nil
}

// LexicalStrategy defers to the lexical backend.
type LexicalStrategy struct {
	Extractor *lexical.Extractor
}

func (s *LexicalStrategy) Name() string { return string(topics.SourceLexical) }

// Propose implements Strategy.
func (s *LexicalStrategy) Propose(ctx context.Context, corpus Corpus, target int) ([]topics.Topic, error) {
	return s.Extractor.Extract(ctx, corpus.Docs, lexical.Request{NumTopics: target})
}
