package cluster

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicmine/pkg/topicmine/candidates"
	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
)

func TestGreedyFirstMatch(t *testing.T) {
	cands := []candidates.Candidate{
		{Phrase: "openai agents", Score: 9},
		{Phrase: "gpu shortage", Score: 8},
		{Phrase: "openai", Score: 7},
		{Phrase: "agents gpu", Score: 6},
		{Phrase: "vaccines", Score: 10},
	}

	groups := Greedy(cands)
	require.Len(t, groups, 3)

	assert.Equal(t, "vaccines", groups[0].Representative().Phrase)

	first := groups[1]
	assert.Equal(t, 0, first.ID)
	assert.Len(t, first.Members, 3, "'agents gpu' joins the earliest group it overlaps")
	assert.Equal(t, "openai agents", first.Representative().Phrase)
	assert.Equal(t, []string{"openai", "agents gpu"}, first.Related(3))
	assert.Equal(t, []string{"openai"}, first.Related(1))

	assert.Equal(t, []candidates.Candidate{{Phrase: "gpu shortage", Score: 8}}, groups[2].Members)
}

func TestGreedyEmpty(t *testing.T) {
	assert.Empty(t, Greedy(nil))
	assert.Equal(t, candidates.Candidate{}, Group{}.Representative())
	assert.Nil(t, Group{}.Related(3))
}

func TestAgglomerativeSeparable(t *testing.T) {
	vectors := [][]float64{{0, 0}, {10, 10}, {0, 1}, {10, 11}}

	for _, l := range []Linkage{LinkageWard, LinkageAverage, LinkageComplete, LinkageSingle} {
		t.Run(string(l), func(t *testing.T) {
			labels, err := Agglomerative{Linkage: l}.Fit(context.Background(), vectors, 2)
			require.NoError(t, err)
			assert.Equal(t, []int{0, 1, 0, 1}, labels)
		})
	}
}

func TestAgglomerativeNearestPairFirst(t *testing.T) {
	labels, err := Agglomerative{}.Fit(context.Background(), [][]float64{{5}, {0}, {1}}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1}, labels)
}

func TestAgglomerativeBounds(t *testing.T) {
	ctx := context.Background()
	vectors := [][]float64{{0}, {1}, {2}}

	_, err := Agglomerative{}.Fit(ctx, vectors, 0)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	_, err = Agglomerative{}.Fit(ctx, vectors, 4)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	_, err = Agglomerative{}.Fit(ctx, nil, 1)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	_, err = Agglomerative{}.Fit(ctx, [][]float64{{0, 1}, {1}}, 1)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	labels, err := Agglomerative{}.Fit(ctx, vectors, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, labels)

	labels, err = Agglomerative{}.Fit(ctx, vectors, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, labels)
}

func TestAgglomerativeNonFinite(t *testing.T) {
	ctx := context.Background()

	_, err := Agglomerative{}.Fit(ctx, [][]float64{{0, 1}, {math.NaN(), 1}, {1, 0}}, 2)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
	_, err = Agglomerative{}.Fit(ctx, [][]float64{{math.Inf(1)}, {0}}, 1)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	// squared distances overflow, so no pair can be merged
	_, err = Agglomerative{Linkage: LinkageWard}.Fit(ctx, [][]float64{{1e308}, {-1e308}, {0}}, 1)
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestAgglomerativeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Agglomerative{}.Fit(ctx, [][]float64{{0}, {1}, {2}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLinkage(t *testing.T) {
	l, err := ParseLinkage("")
	require.NoError(t, err)
	assert.Equal(t, LinkageWard, l)

	l, err = ParseLinkage("average")
	require.NoError(t, err)
	assert.Equal(t, LinkageAverage, l)

	_, err = ParseLinkage("centroid")
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}
