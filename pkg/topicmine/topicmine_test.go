package topicmine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/embed"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/store/memstore"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

var day = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func corpus() []ingest.Document {
	return []ingest.Document{
		{ID: "a", Subject: "Chip shortage deepens", Body: "Cloud providers ration capacity as the chip shortage drags on.", Timestamp: day},
		{ID: "b", Subject: "Robotics funding round", Body: "Humanoid robotics startups closed a record robotics funding round.", Timestamp: day.Add(-24 * time.Hour)},
		{ID: "c", Subject: "Vaccine trial results", Body: "The malaria vaccine trial reported strong vaccine efficacy.", Timestamp: day.Add(-48 * time.Hour)},
	}
}

func TestExtractLexical(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	defer e.Close()

	got, err := e.ExtractLexical(context.Background(), corpus(), LexicalRequest{NumTopics: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Contains(t, got[0].Phrase, "chip shortage", "newest issue ranks first")

	cards := e.Cards(got, corpus())
	require.Len(t, cards, 3)
	assert.True(t, cards[0].Found)
}

func TestExtractSemantic(t *testing.T) {
	e, err := New(Options{})
	require.NoError(t, err)
	_, err = e.ExtractSemantic(context.Background(), corpus(), SemanticRequest{NumTopics: 3})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)

	emb := embed.NewHashingEmbedder(0)
	defer emb.Close()
	e, err = New(Options{Embedder: emb})
	require.NoError(t, err)

	got, err := e.ExtractSemantic(context.Background(), corpus(), SemanticRequest{NumTopics: 3})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = New(Options{Embedder: emb, Linkage: "centroid"})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestIngestRecentRecord(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	e, err := New(Options{Store: st})
	require.NoError(t, err)
	defer e.Close()

	for _, d := range corpus() {
		require.NoError(t, e.Ingest(ctx, d))
	}
	require.NoError(t, e.Ingest(ctx, ingest.Document{ID: "u", Subject: "Undated issue"}))
	assert.ErrorIs(t, e.Ingest(ctx, ingest.Document{ID: "empty"}), internalerr.ErrInvalidInput)

	recent, err := e.Recent(ctx, day.Add(-36*time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "a", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
	assert.Equal(t, "u", recent[2].ID)

	ts, err := e.ExtractLexical(ctx, recent, LexicalRequest{NumTopics: 2})
	require.NoError(t, err)

	id, err := e.Record(ctx, RunInfo{Backend: "lexical", NumTopics: 2, DocCount: len(recent)}, ts)
	require.NoError(t, err)

	run, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "lexical", run.Backend)
	assert.Len(t, run.Topics, len(ts))
	assert.Equal(t, 1, run.Topics[0].Rank)
}

func TestStoreRequired(t *testing.T) {
	ctx := context.Background()
	e, err := New(Options{})
	require.NoError(t, err)

	assert.ErrorIs(t, e.Ingest(ctx, corpus()[0]), internalerr.ErrStoreUnavailable)
	_, err = e.Recent(ctx, time.Time{}, 0)
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	_, err = e.Record(ctx, RunInfo{}, nil)
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	assert.NoError(t, e.Close())
}

func TestRecentKeepsUndatedIssues(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger, err := logging.New(&buf, "warn")
	require.NoError(t, err)

	e, err := New(Options{Store: memstore.New(), Logger: logger})
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Ingest(ctx, ingest.Document{ID: "dated", Subject: "Chip shortage deepens", Body: "Cloud providers ration chip capacity.", Timestamp: time.Now().Add(-time.Hour)}))
	require.NoError(t, e.Ingest(ctx, ingest.Document{ID: "bad", Subject: "Breaking: OpenAI launches agents", Body: "OpenAI launches agents for developers.", Date: "not a date"}))

	recent, err := e.Recent(ctx, time.Now().Add(-7*24*time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "bad", recent[1].ID)

	buf.Reset()
	ts, err := e.ExtractLexical(ctx, recent, LexicalRequest{NumTopics: 2})
	require.NoError(t, err)
	assert.True(t, containsPhrase(ts, "openai"), "undated issue should contribute topics: %v", ts)
	assert.Contains(t, buf.String(), "could not parse document date")
}

func containsPhrase(ts []topics.Topic, word string) bool {
	for _, tp := range ts {
		if strings.Contains(tp.Phrase, word) {
			return true
		}
	}
	return false
}
