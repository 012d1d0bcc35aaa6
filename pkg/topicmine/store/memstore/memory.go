package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]store.Doc
	runs  map[string]store.Run
	stops map[string]struct{}
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		docs:  make(map[string]store.Doc),
		runs:  make(map[string]store.Run),
		stops: make(map[string]struct{}),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertDoc inserts or updates a document, keyed by message id.
func (s *Store) UpsertDoc(ctx context.Context, d store.Doc) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("memstore: upsert doc without id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.docs[d.ID]; ok {
		d.IngestedAt = existing.IngestedAt
	} else if d.IngestedAt.IsZero() {
		d.IngestedAt = time.Now()
	}
	s.docs[d.ID] = d
	return nil
}

// GetDoc returns a document by message id.
func (s *Store) GetDoc(ctx context.Context, id string) (store.Doc, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[id]
	return d, ok, nil
}

// DocsSince implements store.Store.
func (s *Store) DocsSince(ctx context.Context, since time.Time, limit int) ([]store.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Doc
	for _, d := range s.docs {
		if !since.IsZero() && !d.PublishedAt.IsZero() && d.PublishedAt.Before(since) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].PublishedAt, out[j].PublishedAt
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		if !a.Equal(b) {
			return a.After(b)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountDocs implements store.Store.
func (s *Store) CountDocs(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// SaveRun implements store.Store.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("memstore: save run without id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun implements store.Store.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("memstore: run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// ListRuns implements store.Store.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, copyRun(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// AddStopwords implements store.Store.
func (s *Store) AddStopwords(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			s.stops[t] = struct{}{}
		}
	}
	return nil
}

// RemoveStopwords implements store.Store.
func (s *Store) RemoveStopwords(ctx context.Context, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		delete(s.stops, strings.ToLower(strings.TrimSpace(t)))
	}
	return nil
}

// Stopwords implements store.Store.
func (s *Store) Stopwords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.stops))
	for t := range s.stops {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func copyRun(r store.Run) store.Run {
	out := r
	out.Topics = make([]store.RunTopic, len(r.Topics))
	for i, t := range r.Topics {
		t.Related = append([]string(nil), t.Related...)
		out.Topics[i] = t
	}
	return out
}
