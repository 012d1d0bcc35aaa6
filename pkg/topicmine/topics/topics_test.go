package topics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLabel(t *testing.T) {
	tp := New("openai launches", []string{"openai", "launches"}, 4, SourceLexical)
	assert.Equal(t, "openai launches (openai, launches)", tp.Label)
	assert.Equal(t, "openai launches", tp.Phrase)

	assert.Equal(t, "gpu shortage", New("gpu shortage", nil, 1, SourceEmbedding).Label)
}

func TestSelect(t *testing.T) {
	ts := []Topic{
		New("b", nil, 1, SourceLexical),
		New("a", nil, 3, SourceLexical),
		New("c", nil, 3, SourceLexical),
	}

	got := Select(ts, 2, Options{})
	assert.Equal(t, []string{"a", "c"}, Labels(got), "stable sort keeps upstream order on ties")

	got = Select(ts, 2, Options{PreserveOrder: true})
	assert.Equal(t, []string{"b", "a"}, Labels(got))

	assert.Len(t, Select(ts, 10, Options{}), 3, "select never pads")
	assert.Empty(t, Select(ts, 0, Options{}))
	assert.NotNil(t, Select(nil, 3, Options{}))
	assert.Equal(t, "b", ts[0].Phrase, "input is not reordered")
}

func TestMergeAndContains(t *testing.T) {
	base := []Topic{New("GPU shortage", nil, 5, SourceEmbedding)}
	extra := []Topic{
		New("gpu shortage ", nil, 4, SourceKeyphrase),
		New("", nil, 4, SourceKeyphrase),
		New("robotics", nil, 3, SourceKeyphrase),
		New("vaccines", nil, 2, SourceKeyphrase),
	}

	assert.True(t, Contains(base, " gpu SHORTAGE"))

	got := Merge(base, extra, 2)
	assert.Equal(t, []string{"GPU shortage", "robotics"}, Labels(got))
	assert.Len(t, base, 1, "merge does not grow base in place")

	assert.Len(t, Merge(base, extra, -1), 3)
}

func TestMinMaxScore(t *testing.T) {
	ts := []Topic{{Score: 2}, {Score: -1}, {Score: 7}}
	assert.Equal(t, -1.0, MinScore(ts))
	assert.Equal(t, 7.0, MaxScore(ts))
	assert.Zero(t, MinScore(nil))
	assert.Zero(t, MaxScore(nil))
}
