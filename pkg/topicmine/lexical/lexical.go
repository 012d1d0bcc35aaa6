// Package lexical is the frequency-based topic backend: recency-weighted
// n-gram mining followed by greedy token-overlap clustering.
package lexical

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/candidates"
	"github.com/cognicore/topicmine/pkg/topicmine/cluster"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/recency"
	"github.com/cognicore/topicmine/pkg/topicmine/stoplist"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// Defaults for the candidate pool
const (
	DefaultPoolFactor = 5
	MaxRelated        = 3
)

// Options configures an Extractor
type Options struct {
	Stoplist   *stoplist.Manager
	Weighter   *recency.Weighter
	Candidates candidates.Options
	// PoolFactor sets the clustered pool to NumTopics x PoolFactor candidates.
	PoolFactor int
	Logger     *log.Logger
}

// Request is one lexical extraction call
type Request struct {
	NumTopics int
	// PreserveOrder returns topics in cluster order followed by backfill,
	// instead of by descending score.
	PreserveOrder bool
}

// Extractor runs the lexical pipeline:
// weights → candidate table → filter → top pool → greedy clusters → labels → backfill
type Extractor struct {
	stops      *stoplist.Manager
	weighter   *recency.Weighter
	generator  *candidates.Generator
	poolFactor int
	logger     *log.Logger
}

// New creates an Extractor; unset options fall back to defaults
func New(opts Options) *Extractor {
	if opts.Stoplist == nil {
		opts.Stoplist = stoplist.NewDefaultManager()
	}
	logger := logging.OrDiscard(opts.Logger)
	if opts.Weighter == nil {
		wopts := recency.DefaultOptions()
		wopts.Logger = logger
		opts.Weighter = recency.NewWeighter(wopts)
	}
	if opts.PoolFactor <= 0 {
		opts.PoolFactor = DefaultPoolFactor
	}
	return &Extractor{
		stops:      opts.Stoplist,
		weighter:   opts.Weighter,
		generator:  candidates.NewGenerator(opts.Stoplist, opts.Candidates),
		poolFactor: opts.PoolFactor,
		logger:     logger,
	}
}

// Extract returns at most req.NumTopics topics. An empty corpus, or one with
// no surviving candidates, yields an empty slice and no error.
func (e *Extractor) Extract(ctx context.Context, docs []ingest.Document, req Request) ([]topics.Topic, error) {
	if req.NumTopics < 0 {
		return nil, fmt.Errorf("lexical: num topics %d: %w", req.NumTopics, internalerr.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("lexical: %w", err)
	}
	if req.NumTopics == 0 || len(docs) == 0 {
		return []topics.Topic{}, nil
	}

	pool := e.Pool(docs, req.NumTopics*e.poolFactor)
	if len(pool) == 0 {
		e.logger.Debug("no lexical candidates survived filtering", "docs", len(docs))
		return []topics.Topic{}, nil
	}

	ts := Label(cluster.Greedy(pool), pool, req.NumTopics)
	return topics.Select(ts, req.NumTopics, topics.Options{PreserveOrder: req.PreserveOrder}), nil
}

// Pool returns the size highest-scoring candidates that pass the topic filter
func (e *Extractor) Pool(docs []ingest.Document, size int) []candidates.Candidate {
	weights := e.weighter.Weights(docs)
	table := e.generator.Generate(docs, weights)
	filtered := table.Filter(func(phrase string) bool {
		reason, rejected := e.stops.Check(phrase)
		if rejected {
			e.logger.Debug("candidate rejected", "phrase", phrase, "reason", reason.String())
		}
		return !rejected
	})
	return filtered.Top(size)
}

// Label turns clusters into at most n topics: the representative of each
// cluster in cluster order, annotated with up to three related members. When
// there are fewer clusters than n, the ranked pool backfills, skipping any
// phrase that already occurs as a substring of a chosen label.
func Label(groups []cluster.Group, pool []candidates.Candidate, n int) []topics.Topic {
	var out []topics.Topic
	for _, g := range groups {
		if len(out) >= n {
			break
		}
		rep := g.Representative()
		out = append(out, topics.New(rep.Phrase, g.Related(MaxRelated), rep.Score, topics.SourceLexical))
	}

	if len(out) >= n {
		return out
	}

	// TODO: the substring test also rejects phrases that only occur inside a
	// longer word of a label ("open" inside "openai"); switch to token-set
	// comparison once there is a labelled corpus to check the change against.
	chosen := strings.Join(topics.Labels(out), " ")
	for _, c := range pool {
		if len(out) >= n {
			break
		}
		if strings.Contains(chosen, c.Phrase) {
			continue
		}
		t := topics.New(c.Phrase, nil, c.Score, topics.SourceLexical)
		out = append(out, t)
		chosen += " " + t.Label
	}
	return out
}
