package candidates

import "sort"

// Candidate is a phrase of one to four tokens with its accumulated score
type Candidate struct {
	Phrase string
	Score  float64
}

// Table accumulates weighted phrase scores
type Table struct {
	scores map[string]float64
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{scores: make(map[string]float64)}
}

// Add adds w to the score of phrase
func (t *Table) Add(phrase string, w float64) {
	if phrase == "" || w == 0 {
		return
	}
	t.scores[phrase] += w
}

// Score returns the accumulated score of phrase
func (t *Table) Score(phrase string) float64 {
	return t.scores[phrase]
}

// Len returns the number of distinct phrases
func (t *Table) Len() int {
	return len(t.scores)
}

// Ranked returns every candidate by descending score. Equal scores are
// ordered by phrase so the ranking is deterministic.
func (t *Table) Ranked() []Candidate {
	out := make([]Candidate, 0, len(t.scores))
	for p, s := range t.scores {
		out = append(out, Candidate{Phrase: p, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Phrase < out[j].Phrase
	})
	return out
}

// Top returns at most n highest-ranked candidates
func (t *Table) Top(n int) []Candidate {
	ranked := t.Ranked()
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Filter returns a new table holding only the phrases keep accepts
func (t *Table) Filter(keep func(phrase string) bool) *Table {
	out := NewTable()
	for p, s := range t.scores {
		if keep(p) {
			out.scores[p] = s
		}
	}
	return out
}
