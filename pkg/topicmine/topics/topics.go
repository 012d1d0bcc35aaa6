// Package topics defines the topic result type and the selection rules every
// backend applies before returning.
package topics

import (
	"sort"
	"strings"
)

// Source names the backend tier that produced a topic
type Source string

const (
	SourceLexical   Source = "lexical"
	SourceEmbedding Source = "embedding"
	SourceKeyphrase Source = "keyphrase"
)

// Topic is one extracted topic.
type Topic struct {
	Label   string   // Phrase, annotated with related terms in parentheses
	Phrase  string   // representative phrase
	Related []string // up to three related terms from the same cluster
	Score   float64
	Source  Source
}

// New builds a topic whose label is phrase followed by its related terms,
// e.g. "openai launches (openai, launches)".
func New(phrase string, related []string, score float64, src Source) Topic {
	label := phrase
	if len(related) > 0 {
		label = phrase + " (" + strings.Join(related, ", ") + ")"
	}
	return Topic{
		Label:   label,
		Phrase:  phrase,
		Related: related,
		Score:   score,
		Source:  src,
	}
}

// Options controls Select
type Options struct {
	// PreserveOrder keeps the upstream order instead of sorting by score.
	PreserveOrder bool
}

// Select enforces the requested count and, unless PreserveOrder is set, a
// score-descending order. Sorting is stable so equal scores keep their
// upstream order. Select never pads: fewer topics in means fewer out.
func Select(ts []Topic, n int, opts Options) []Topic {
	if n <= 0 || len(ts) == 0 {
		return []Topic{}
	}
	out := make([]Topic, len(ts))
	copy(out, ts)
	if !opts.PreserveOrder {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Score > out[j].Score
		})
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Labels returns the labels of ts in order
func Labels(ts []Topic) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Label
	}
	return out
}

// Contains reports whether ts already holds a topic with the same phrase,
// compared case-insensitively.
func Contains(ts []Topic, phrase string) bool {
	key := strings.ToLower(strings.TrimSpace(phrase))
	for _, t := range ts {
		if strings.ToLower(strings.TrimSpace(t.Phrase)) == key {
			return true
		}
	}
	return false
}

// Merge appends topics from extra that are not already present in base,
// stopping once base reaches limit. A limit below 0 means no limit.
func Merge(base, extra []Topic, limit int) []Topic {
	out := append([]Topic(nil), base...)
	for _, t := range extra {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if t.Phrase == "" || Contains(out, t.Phrase) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MinScore returns the lowest score in ts, or 0 for an empty slice
func MinScore(ts []Topic) float64 {
	if len(ts) == 0 {
		return 0
	}
	m := ts[0].Score
	for _, t := range ts[1:] {
		if t.Score < m {
			m = t.Score
		}
	}
	return m
}

// MaxScore returns the highest score in ts, or 0 for an empty slice
func MaxScore(ts []Topic) float64 {
	if len(ts) == 0 {
		return 0
	}
	m := ts[0].Score
	for _, t := range ts[1:] {
		if t.Score > m {
			m = t.Score
		}
	}
	return m
}
