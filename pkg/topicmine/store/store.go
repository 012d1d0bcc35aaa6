// Package store persists the newsletter corpus and the history of extraction
// runs between CLI invocations. The extraction engine itself never touches it.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// Store is the interface for persisting documents and runs
type Store interface {
	Close() error

	// Docs
	UpsertDoc(ctx context.Context, d Doc) error
	GetDoc(ctx context.Context, id string) (Doc, bool, error)
	// DocsSince returns documents published at or after since, newest
	// first, plus every undated document (listed last). A zero since
	// returns every document.
	// limit <= 0 means no limit.
	DocsSince(ctx context.Context, since time.Time, limit int) ([]Doc, error)
	CountDocs(ctx context.Context) (int, error)

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Stoplist additions made from the CLI
	AddStopwords(ctx context.Context, tokens []string) error
	RemoveStopwords(ctx context.Context, tokens []string) error
	Stopwords(ctx context.Context) ([]string, error)
}

// Doc represents a stored newsletter issue
type Doc struct {
	ID          string // message id, unique
	Subject     string
	Sender      string
	Body        string // plain text
	RawDate     string
	PublishedAt time.Time // zero when undated
	IngestedAt  time.Time
}

// Run is one recorded extraction
type Run struct {
	ID        string
	CreatedAt time.Time
	Backend   string
	NumTopics int
	DocCount  int
	Since     time.Time
	Topics    []RunTopic
}

// RunTopic is a topic as recorded in a run, in rank order
type RunTopic struct {
	Rank    int
	Label   string
	Phrase  string
	Related []string
	Score   float64
	Source  string
}

// FromDocument converts an ingested document for storage
func FromDocument(d ingest.Document) Doc {
	ts, _, _ := d.Time()
	return Doc{
		ID:          d.ID,
		Subject:     d.Subject,
		Sender:      d.Sender,
		Body:        d.Body,
		RawDate:     d.Date,
		PublishedAt: ts,
	}
}

// Document converts a stored doc back into engine input
func (d Doc) Document() ingest.Document {
	return ingest.Document{
		ID:        d.ID,
		Subject:   d.Subject,
		Body:      d.Body,
		Sender:    d.Sender,
		Date:      d.RawDate,
		Timestamp: d.PublishedAt,
	}
}

// Documents converts stored docs into engine input, in order
func Documents(docs []Doc) []ingest.Document {
	out := make([]ingest.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Document()
	}
	return out
}

// RunTopics converts extracted topics for recording
func RunTopics(ts []topics.Topic) []RunTopic {
	out := make([]RunTopic, len(ts))
	for i, t := range ts {
		out[i] = RunTopic{
			Rank:    i + 1,
			Label:   t.Label,
			Phrase:  t.Phrase,
			Related: append([]string(nil), t.Related...),
			Score:   t.Score,
			Source:  string(t.Source),
		}
	}
	return out
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a new, lexically time-ordered run identifier
func NewRunID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
