// Package recency assigns each document a weight from its position in the
// corpus date range: the oldest document gets MinWeight, the newest MaxWeight.
package recency

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
)

// Default weight bounds
const (
	DefaultMinWeight = 1.0
	DefaultMaxWeight = 10.0
)

// UndatedPolicy decides which timestamp stands in for a document whose date
// is missing or cannot be parsed.
type UndatedPolicy string

const (
	// UndatedAsNow treats the document as sent at the current wall-clock time.
	// This places it at (or past) the newest end of the range and so inflates
	// its weight; it is the historical behaviour and the default.
	UndatedAsNow UndatedPolicy = "now"
	// UndatedAsOldest pins the document to the oldest dated timestamp.
	UndatedAsOldest UndatedPolicy = "oldest"
	// UndatedAsNewest pins the document to the newest dated timestamp.
	UndatedAsNewest UndatedPolicy = "newest"
)

// ParseUndatedPolicy validates a policy name
func ParseUndatedPolicy(s string) (UndatedPolicy, error) {
	switch p := UndatedPolicy(s); p {
	case UndatedAsNow, UndatedAsOldest, UndatedAsNewest:
		return p, nil
	case "":
		return UndatedAsNow, nil
	default:
		return "", fmt.Errorf("recency: unknown undated policy %q: %w", s, internalerr.ErrInvalidConfig)
	}
}

// Options configures a Weighter
type Options struct {
	MinWeight float64
	MaxWeight float64
	Undated   UndatedPolicy
	// Disabled gives every document MinWeight, i.e. plain frequency mining.
	Disabled bool
	// Now supplies the wall clock for UndatedAsNow; time.Now when nil.
	Now    func() time.Time
	Logger *log.Logger
}

// DefaultOptions returns the [1, 10] range with the "now" fallback.
func DefaultOptions() Options {
	return Options{
		MinWeight: DefaultMinWeight,
		MaxWeight: DefaultMaxWeight,
		Undated:   UndatedAsNow,
	}
}

// Weighter computes per-document recency weights
type Weighter struct {
	min, max float64
	undated  UndatedPolicy
	disabled bool
	now      func() time.Time
	logger   *log.Logger
}

// NewWeighter creates a weighter. Unset bounds fall back to the defaults and
// swapped bounds are reordered.
func NewWeighter(opts Options) *Weighter {
	if opts.MinWeight <= 0 {
		opts.MinWeight = DefaultMinWeight
	}
	if opts.MaxWeight <= 0 {
		opts.MaxWeight = DefaultMaxWeight
	}
	if opts.MinWeight > opts.MaxWeight {
		opts.MinWeight, opts.MaxWeight = opts.MaxWeight, opts.MinWeight
	}
	if opts.Undated == "" {
		opts.Undated = UndatedAsNow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Weighter{
		min:      opts.MinWeight,
		max:      opts.MaxWeight,
		undated:  opts.Undated,
		disabled: opts.Disabled,
		now:      opts.Now,
		logger:   logging.OrDiscard(opts.Logger),
	}
}

// Weights returns one weight per document, indexed like docs.
//
// With a single document, or when every timestamp is identical, every
// document gets the maximum weight. Otherwise
//
//	weight = min + (ts - oldest) / (newest - oldest) * (max - min)
func (w *Weighter) Weights(docs []ingest.Document) []float64 {
	weights := make([]float64, len(docs))
	if len(docs) == 0 {
		return weights
	}
	if w.disabled {
		for i := range weights {
			weights[i] = w.min
		}
		return weights
	}

	times := w.resolve(docs)

	oldest, newest := times[0], times[0]
	for _, t := range times[1:] {
		if t.Before(oldest) {
			oldest = t
		}
		if t.After(newest) {
			newest = t
		}
	}

	span := newest.Sub(oldest).Seconds()
	if len(docs) == 1 || span == 0 {
		for i := range weights {
			weights[i] = w.max
		}
		return weights
	}

	for i, t := range times {
		factor := t.Sub(oldest).Seconds() / span
		weights[i] = clamp(w.min+factor*(w.max-w.min), w.min, w.max)
	}
	return weights
}

// resolve returns a timestamp for every document, applying the undated policy.
func (w *Weighter) resolve(docs []ingest.Document) []time.Time {
	times := make([]time.Time, len(docs))
	var undated []int
	var oldest, newest time.Time

	for i := range docs {
		t, ok, err := docs[i].Time()
		if !ok {
			undated = append(undated, i)
			if err != nil {
				w.logger.Warn("could not parse document date", "index", i, "date", docs[i].Date, "error", err, "policy", string(w.undated))
			} else {
				w.logger.Warn("document has no date", "index", i, "subject", docs[i].Subject, "policy", string(w.undated))
			}
			continue
		}
		times[i] = t
		if oldest.IsZero() || t.Before(oldest) {
			oldest = t
		}
		if newest.IsZero() || t.After(newest) {
			newest = t
		}
	}

	if len(undated) == 0 {
		return times
	}

	now := w.now()
	fill := now
	switch w.undated {
	case UndatedAsOldest:
		if !oldest.IsZero() {
			fill = oldest
		}
	case UndatedAsNewest:
		if !newest.IsZero() {
			fill = newest
		}
	}
	for _, i := range undated {
		times[i] = fill
	}
	return times
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
