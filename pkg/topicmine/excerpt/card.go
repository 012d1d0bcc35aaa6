package excerpt

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// NotFound is shown in place of an example when no sentence qualifies
const NotFound = "No clear example found"

// Builder turns topics into display cards
type Builder struct {
	finder  *Finder
	entropy *ulid.MonotonicEntropy
}

// NewBuilder creates a card builder using the default sentence filter
func NewBuilder() *Builder {
	return &Builder{
		finder:  NewFinder(DefaultFilter()),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Card is a topic ready for display: its label and score, a cleaned example
// sentence, and the documents that mention the phrase.
type Card struct {
	ID      string
	Label   string
	Score   float64
	Source  topics.Source
	Example string
	Found   bool
	Sources []SourceRef
}

// SourceRef references a document mentioning the topic
type SourceRef struct {
	DocID   string
	Subject string
	Time    time.Time
}

// Build creates a card for t from the corpus it was extracted from
func (b *Builder) Build(t topics.Topic, docs []ingest.Document) Card {
	card := Card{
		ID:      ulid.MustNew(ulid.Now(), b.entropy).String(),
		Label:   t.Label,
		Score:   t.Score,
		Source:  t.Source,
		Example: NotFound,
		Sources: make([]SourceRef, 0),
	}

	if s, ok := b.finder.Find(t, docs); ok {
		card.Example = Clean(s)
		card.Found = true
	}

	phrase := strings.ToLower(t.Phrase)
	for _, d := range docs {
		if phrase == "" || !strings.Contains(strings.ToLower(d.Subject+" "+d.Body), phrase) {
			continue
		}
		ts, _, _ := d.Time()
		card.Sources = append(card.Sources, SourceRef{
			DocID:   d.ID,
			Subject: d.Subject,
			Time:    ts,
		})
	}
	return card
}

// BuildAll creates one card per topic, in order
func (b *Builder) BuildAll(ts []topics.Topic, docs []ingest.Document) []Card {
	out := make([]Card, len(ts))
	for i, t := range ts {
		out[i] = b.Build(t, docs)
	}
	return out
}
