package semantic

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/keyphrase"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

var day = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type fixedScorer struct {
	kps   []keyphrase.Keyphrase
	err   error
	calls []ingest.Range
}

func (f *fixedScorer) Extract(_ context.Context, _ []string, _ []float64, opts keyphrase.Options) ([]keyphrase.Keyphrase, error) {
	f.calls = append(f.calls, opts.NGram)
	if f.err != nil {
		return nil, f.err
	}
	out := f.kps
	if len(out) > opts.TopN {
		out = out[:opts.TopN]
	}
	return out, nil
}

type fixedStrategy struct {
	name   string
	ts     []topics.Topic
	err    error
	called bool
}

func (s *fixedStrategy) Name() string { return s.name }

func (s *fixedStrategy) Propose(context.Context, Corpus, int) ([]topics.Topic, error) {
	s.called = true
	return s.ts, s.err
}

type failingEmbedder struct{ err error }

func (f failingEmbedder) Embed(context.Context, string) ([]float64, error) { return nil, f.err }
func (f failingEmbedder) Close() error                                     { return nil }

type nanEmbedder struct{}

func (nanEmbedder) Embed(context.Context, string) ([]float64, error) {
	return []float64{math.NaN(), 1}, nil
}
func (nanEmbedder) Close() error { return nil }

func phrases(ts []topics.Topic) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Phrase
	}
	return out
}

func TestChainFallsThroughWhenShort(t *testing.T) {
	first := &fixedStrategy{name: "first", ts: []topics.Topic{
		topics.New("gpu shortage", nil, 0.8, topics.SourceEmbedding),
		topics.New("vaccine trial", nil, 0.4, topics.SourceEmbedding),
	}}
	second := &fixedStrategy{name: "second", ts: []topics.Topic{
		topics.New("gpu shortage", nil, 10, topics.SourceLexical),
		topics.New("robotics funding", nil, 8, topics.SourceLexical),
		topics.New("chip exports", nil, 2, topics.SourceLexical),
	}}
	third := &fixedStrategy{name: "third"}

	got, err := NewChain(nil, first, second, third).Run(context.Background(), Corpus{}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"gpu shortage", "vaccine trial", "robotics funding"}, phrases(got))
	assert.Equal(t, topics.SourceEmbedding, got[0].Source, "earlier tier wins duplicates")
	// second tier rescaled so its best (gpu shortage, 10) sits at 0.4
	assert.InDelta(t, 0.32, got[2].Score, 1e-9)
	assert.False(t, third.called, "chain stops once the target is met")
}

func TestChainPropagatesErrors(t *testing.T) {
	errDown := errors.New("down")
	first := &fixedStrategy{name: "first", err: errDown}
	second := &fixedStrategy{name: "second", ts: []topics.Topic{topics.New("gpu", nil, 1, topics.SourceLexical)}}

	_, err := NewChain(nil, first, second).Run(context.Background(), Corpus{}, 3)
	assert.ErrorIs(t, err, errDown)
	assert.False(t, second.called)
}

func TestChainTargetAndCancel(t *testing.T) {
	s := &fixedStrategy{name: "only"}
	got, err := NewChain(nil, s).Run(context.Background(), Corpus{}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, s.called)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewChain(nil, s).Run(ctx, Corpus{}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankBelow(t *testing.T) {
	ts := []topics.Topic{{Phrase: "a", Score: 10}, {Phrase: "b", Score: 5}}

	got := rankBelow(ts, 2)
	assert.InDelta(t, 2.0, got[0].Score, 1e-9)
	assert.InDelta(t, 1.0, got[1].Score, 1e-9)
	assert.Equal(t, 10.0, ts[0].Score, "input untouched")

	got = rankBelow(ts, 20)
	assert.Equal(t, 10.0, got[0].Score, "already below the ceiling")

	got = rankBelow(ts, 0)
	assert.Zero(t, got[0].Score)
	assert.Zero(t, got[1].Score)
}

func TestScreenBackstop(t *testing.T) {
	stops := stoplist.NewDefaultManager()
	kps := []keyphrase.Keyphrase{
		{Phrase: "weekly agents", Score: 0.9},
		{Phrase: "email header", Score: 0.8},
		{Phrase: "gpu shortage", Score: 0.7},
		{Phrase: "weekly digest", Score: 0.6},
	}

	got := screen(kps, stops, 1, nil)
	assert.Equal(t, []keyphrase.Keyphrase{{Phrase: "gpu shortage", Score: 0.7}}, got)

	got = screen(kps, stops, 3, nil)
	assert.Equal(t, []keyphrase.Keyphrase{
		{Phrase: "weekly agents", Score: 0.9},
		{Phrase: "gpu shortage", Score: 0.7},
	}, got, "only soft rejections with a core term come back, in scorer order")
}

func TestEmbeddingStrategyOneTopicPerCluster(t *testing.T) {
	scorer := &fixedScorer{kps: []keyphrase.Keyphrase{
		{Phrase: "gpu shortage", Score: 0.9},
		{Phrase: "gpu shortages", Score: 0.8},
		{Phrase: "vaccine trial", Score: 0.7},
		{Phrase: "robotics funding", Score: -0.1},
	}}
	s := &EmbeddingStrategy{
		Scorer:   scorer,
		Embedder: embed.NewHashingEmbedder(0),
		Stops:    stoplist.NewDefaultManager(),
		NGram:    DefaultNGram,
	}

	got, err := s.Propose(context.Background(), Corpus{}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"gpu shortage", "vaccine trial", "robotics funding"}, phrases(got))
	assert.Zero(t, got[2].Score, "negative similarity is clamped")
	for _, tp := range got {
		assert.Equal(t, topics.SourceEmbedding, tp.Source)
	}
}

func TestEmbeddingStrategySkipsClusteringBelowTwo(t *testing.T) {
	errCalled := errors.New("embedder called")
	kps := []keyphrase.Keyphrase{
		{Phrase: "gpu shortage", Score: 0.9},
		{Phrase: "vaccine trial", Score: 0.7},
	}
	s := &EmbeddingStrategy{
		Scorer:   &fixedScorer{kps: kps},
		Embedder: failingEmbedder{err: errCalled},
		Stops:    stoplist.NewDefaultManager(),
		NGram:    DefaultNGram,
	}

	got, err := s.Propose(context.Background(), Corpus{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"gpu shortage"}, phrases(got))
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)

	// one candidate survives the filter
	s.Scorer = &fixedScorer{kps: []keyphrase.Keyphrase{
		{Phrase: "email header", Score: 0.95},
		{Phrase: "vaccine trial", Score: 0.7},
		{Phrase: "hiring engineers", Score: 0.6},
	}}
	got, err = s.Propose(context.Background(), Corpus{}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"vaccine trial"}, phrases(got))
}

func TestEmbeddingStrategyRejectsNonFiniteVectors(t *testing.T) {
	s := &EmbeddingStrategy{
		Scorer: &fixedScorer{kps: []keyphrase.Keyphrase{
			{Phrase: "gpu shortage", Score: 0.9},
			{Phrase: "vaccine trial", Score: 0.7},
			{Phrase: "robotics funding", Score: 0.5},
		}},
		Embedder: nanEmbedder{},
		Stops:    stoplist.NewDefaultManager(),
		NGram:    DefaultNGram,
	}

	_, err := s.Propose(context.Background(), Corpus{}, 2)
	assert.ErrorIs(t, err, internalerr.ErrBackendUnavailable)
}

func TestExtractorEndToEnd(t *testing.T) {
	docs := []ingest.Document{
		{Subject: "GPU shortage deepens", Body: "Cloud providers ration GPU capacity as the GPU shortage drags on.", Timestamp: day},
		{Subject: "Robotics funding round", Body: "Humanoid robotics startups closed a record robotics funding round.", Timestamp: day.Add(-24 * time.Hour)},
		{Subject: "Vaccine trial results", Body: "The malaria vaccine trial reported strong vaccine efficacy.", Timestamp: day.Add(-48 * time.Hour)},
	}
	x, err := New(Options{Embedder: embed.NewHashingEmbedder(0)})
	require.NoError(t, err)

	got, err := x.Extract(context.Background(), docs, Request{NumTopics: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)

	seen := map[string]bool{}
	for i, tp := range got {
		assert.False(t, seen[tp.Phrase], "duplicate phrase %q", tp.Phrase)
		seen[tp.Phrase] = true
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Score, tp.Score)
		}
	}

	again, err := x.Extract(context.Background(), docs, Request{NumTopics: 3})
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestExtractorFallsBackToLexical(t *testing.T) {
	scorer := &fixedScorer{}
	x, err := New(Options{Embedder: embed.NewHashingEmbedder(0), Scorer: scorer})
	require.NoError(t, err)

	docs := []ingest.Document{{Subject: "Robotics funding round", Body: "Humanoid robotics startups raised money.", Timestamp: day}}
	got, err := x.Extract(context.Background(), docs, Request{NumTopics: 2})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for _, tp := range got {
		assert.Equal(t, topics.SourceLexical, tp.Source)
	}
	assert.Equal(t, []ingest.Range{DefaultNGram, AlternateNGram}, scorer.calls)
}

func TestExtractorEmbeddingFailure(t *testing.T) {
	errDown := errors.New("embedding server down")
	x, err := New(Options{Embedder: failingEmbedder{err: errDown}})
	require.NoError(t, err)

	docs := []ingest.Document{{Subject: "GPU shortage", Body: "GPU capacity is rationed.", Timestamp: day}}
	_, err = x.Extract(context.Background(), docs, Request{NumTopics: 3})
	assert.ErrorIs(t, err, errDown)
}

func TestExtractorValidation(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New(Options{Embedder: embed.NewHashingEmbedder(8), Linkage: "centroid"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	_, err = New(Options{Embedder: embed.NewHashingEmbedder(8), AlternateNGram: ingest.Range{Min: 3, Max: 1}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	x, err := New(Options{Embedder: embed.NewHashingEmbedder(8)})
	require.NoError(t, err)
	ctx := context.Background()
	docs := []ingest.Document{{Body: "robotics"}}

	_, err = x.Extract(ctx, docs, Request{NumTopics: -1})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	_, err = x.Extract(ctx, docs, Request{NumTopics: 2, NGram: ingest.Range{Min: 2, Max: 1}})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	_, err = x.Extract(ctx, docs, Request{NumTopics: 2, CandidatePool: -5})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	got, err := x.Extract(ctx, nil, Request{NumTopics: 2})
	require.NoError(t, err)
	assert.Empty(t, got)
}
