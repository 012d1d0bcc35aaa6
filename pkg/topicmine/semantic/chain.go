package semantic

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// Chain tries strategies in order until the target count is met. Each later
// tier only contributes phrases not already chosen, and its scores are
// rescaled to sit at or below the lowest score chosen so far, so the merged
// list stays score-descending with earlier tiers ranked first.
//
// An error from any tier ends the run; the chain falls through only when a
// tier comes up short.
type Chain struct {
	strategies []Strategy
	logger     *log.Logger
}

// NewChain creates a chain over the given strategies
func NewChain(logger *log.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, logger: logging.OrDiscard(logger)}
}

// Run executes the chain and returns at most target topics.
func (c *Chain) Run(ctx context.Context, corpus Corpus, target int) ([]topics.Topic, error) {
	if target <= 0 {
		return []topics.Topic{}, nil
	}

	var out []topics.Topic
	for i, s := range c.strategies {
		if len(out) >= target {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("semantic: %w", err)
		}
		if i > 0 {
			c.logger.Info("falling back", "strategy", s.Name(), "have", len(out), "target", target)
		}

		proposed, err := s.Propose(ctx, corpus, target)
		if err != nil {
			return nil, fmt.Errorf("semantic: %s strategy: %w", s.Name(), err)
		}
		proposed = topics.Select(proposed, len(proposed), topics.Options{})
		if len(out) > 0 {
			proposed = rankBelow(proposed, topics.MinScore(out))
		}
		out = topics.Merge(out, proposed, target)
	}
	return topics.Select(out, target, topics.Options{}), nil
}

// rankBelow scales scores so the best of ts equals ceiling, keeping their
// relative order. ts must be score-descending.
func rankBelow(ts []topics.Topic, ceiling float64) []topics.Topic {
	top := topics.MaxScore(ts)
	out := make([]topics.Topic, len(ts))
	for i, t := range ts {
		switch {
		case ceiling <= 0 || top <= 0:
			t.Score = 0
		case top > ceiling:
			t.Score = ceiling * (t.Score / top)
		}
		out[i] = t
	}
	return out
}
