// Package cluster groups topic candidates, lexically by shared tokens or
// semantically by agglomerative clustering of embeddings.
package cluster

import (
	"sort"
	"strings"

	"github.com/cognicore/topicmine/pkg/topicmine/candidates"
)

// Group is a set of candidates that share tokens, in join order
type Group struct {
	ID      int
	Members []candidates.Candidate
}

// MaxScore returns the highest member score
func (g Group) MaxScore() float64 {
	best := 0.0
	for i, m := range g.Members {
		if i == 0 || m.Score > best {
			best = m.Score
		}
	}
	return best
}

// ByScore returns the members sorted by descending score; ties keep join order
func (g Group) ByScore() []candidates.Candidate {
	out := append([]candidates.Candidate(nil), g.Members...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Representative returns the highest-scoring member
func (g Group) Representative() candidates.Candidate {
	if len(g.Members) == 0 {
		return candidates.Candidate{}
	}
	return g.ByScore()[0]
}

// Related returns up to k of the next-highest members after the
// representative, skipping any that repeat its phrase.
func (g Group) Related(k int) []string {
	sorted := g.ByScore()
	if len(sorted) <= 1 || k <= 0 {
		return nil
	}
	rep := sorted[0].Phrase
	end := 1 + k
	if end > len(sorted) {
		end = len(sorted)
	}
	var out []string
	for _, m := range sorted[1:end] {
		if m.Phrase != rep {
			out = append(out, m.Phrase)
		}
	}
	return out
}

// Greedy groups candidates in the given order. Two phrases are related when
// they share at least one token. Each candidate joins the earliest-created
// group it shares a token with, or starts a new group; groups never merge.
//
// A token index maps every token to the earliest group containing it, so the
// first-match rule is a single lookup per token instead of a scan over groups.
// The result is ordered by descending MaxScore; ties keep creation order.
func Greedy(cands []candidates.Candidate) []Group {
	var groups []Group
	firstGroup := make(map[string]int)

	for _, c := range cands {
		tokens := strings.Fields(c.Phrase)
		target := -1
		for _, tok := range tokens {
			if id, ok := firstGroup[tok]; ok && (target == -1 || id < target) {
				target = id
			}
		}
		if target == -1 {
			target = len(groups)
			groups = append(groups, Group{ID: target})
		}
		groups[target].Members = append(groups[target].Members, c)
		for _, tok := range tokens {
			if id, ok := firstGroup[tok]; !ok || target < id {
				firstGroup[tok] = target
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].MaxScore() > groups[j].MaxScore()
	})
	return groups
}
