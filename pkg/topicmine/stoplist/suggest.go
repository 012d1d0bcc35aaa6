package stoplist

import "sort"

// Stats holds document frequency for one token across a corpus
type Stats struct {
	Token     string
	DF        int
	DFPercent float64
}

// Candidate is a token suggested as newsletter noise
type Candidate struct {
	Token     string
	DFPercent float64
	Score     float64 // share of documents, in [0,1]
}

// Thresholds defines criteria for noise suggestions
type Thresholds struct {
	DFPercent float64 // e.g. 60: appears in 60% of documents
	MinDocs   int     // corpora smaller than this yield nothing
}

// DefaultThresholds returns the thresholds used by the CLI.
func DefaultThresholds() Thresholds {
	return Thresholds{DFPercent: 60, MinDocs: 5}
}

// DocumentFrequency counts, per token, how many documents contain it.
// Each element of docs is the token list of one document.
func DocumentFrequency(docs [][]string) []Stats {
	df := make(map[string]int)
	for _, toks := range docs {
		seen := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	stats := make([]Stats, 0, len(df))
	for tok, n := range df {
		stats = append(stats, Stats{
			Token:     tok,
			DF:        n,
			DFPercent: 100 * float64(n) / float64(len(docs)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].DF != stats[j].DF {
			return stats[i].DF > stats[j].DF
		}
		return stats[i].Token < stats[j].Token
	})
	return stats
}

// SuggestCandidates returns tokens frequent enough across issues to look
// like recurring newsletter boilerplate. Tokens already filtered and core
// terms are never suggested. totalDocs is the corpus size the stats were
// computed over.
func (m *Manager) SuggestCandidates(stats []Stats, totalDocs int, th Thresholds) []Candidate {
	if th.DFPercent <= 0 {
		th.DFPercent = DefaultThresholds().DFPercent
	}
	if totalDocs < th.MinDocs {
		return nil
	}

	var out []Candidate
	for _, s := range stats {
		if m.IsStop(s.Token) || m.IsNoise(s.Token) {
			continue
		}
		if _, core := m.core[s.Token]; core {
			continue
		}
		if s.DFPercent < th.DFPercent {
			continue
		}
		out = append(out, Candidate{Token: s.Token, DFPercent: s.DFPercent, Score: s.DFPercent / 100})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Token < out[j].Token
	})
	return out
}
