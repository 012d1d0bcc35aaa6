package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNGrams(t *testing.T) {
	tokens := []string{"openai", "launches", "agents"}

	grams := NGrams(tokens, Range{Min: 1, Max: 2})
	var phrases []string
	for _, g := range grams {
		phrases = append(phrases, g.Phrase)
	}
	assert.Equal(t, []string{
		"openai", "openai launches",
		"launches", "launches agents",
		"agents",
	}, phrases)
	assert.Equal(t, 2, grams[1].N)
}

func TestNGramsInvalidRange(t *testing.T) {
	tokens := []string{"openai", "launches"}
	assert.Nil(t, NGrams(tokens, Range{Min: 0, Max: 2}))
	assert.Nil(t, NGrams(tokens, Range{Min: 3, Max: 2}))
	assert.Nil(t, NGrams(nil, Range{Min: 1, Max: 3}))
}

func TestNGramsLongerThanInput(t *testing.T) {
	grams := NGrams([]string{"alpha", "beta"}, Range{Min: 3, Max: 3})
	assert.Empty(t, grams)
}

func TestCleanSubject(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"[AI Weekly] OpenAI launches agents", "openai launches agents"},
		{"The Batch: Model releases this week", "model releases this week"},
		{"[TLDR] Breaking: GPU shortage", "gpu shortage"},
		{"Plain subject", "plain subject"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CleanSubject(tc.in), tc.in)
	}
}

func TestDocumentValidate(t *testing.T) {
	assert.Error(t, (&Document{}).Validate())
	assert.Error(t, (&Document{Subject: "  ", Body: "\n"}).Validate())
	assert.NoError(t, (&Document{Subject: "hello"}).Validate())
	assert.NoError(t, (&Document{Body: "hello"}).Validate())
}

func TestDocumentTime(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	got, ok, err := (&Document{Timestamp: ts, Date: "garbage"}).Time()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(ts), "Timestamp wins over Date")

	got, ok, err = (&Document{Date: "Fri, 14 Mar 2025 09:00:00 +0000"}).Time()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equal(ts))

	_, ok, err = (&Document{}).Time()
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = (&Document{Date: "sometime last week"}).Time()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		"Fri, 14 Mar 2025 09:00:00 +0000",
		"Fri, 14 Mar 2025 09:00:00 +0000 (UTC)",
		"14 Mar 2025 09:00:00 +0000",
		"2025-03-14T09:00:00Z",
		"2025-03-14 09:00:00",
	} {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(want), "%s parsed as %s", raw, got)
	}

	_, err := ParseDate("not a date")
	assert.Error(t, err)
}

func TestHTMLToText(t *testing.T) {
	in := `<html><head><title>Weekly</title><style>p{color:red}</style></head>
<body><h1>OpenAI launches agents</h1><p>The new   agents
run tasks.</p><script>track()</script><ul><li>First</li><li>Second</li></ul></body></html>`

	got := HTMLToText(in)

	assert.Contains(t, got, "OpenAI launches agents")
	assert.Contains(t, got, "The new agents\nrun tasks.")
	assert.Contains(t, got, "First")
	assert.NotContains(t, got, "color:red")
	assert.NotContains(t, got, "track()")
	assert.NotContains(t, got, "Weekly")
	assert.NotContains(t, got, "\n\n\n")
}

func TestHTMLToTextEntities(t *testing.T) {
	assert.Equal(t, "R&D costs", HTMLToText("<p>R&amp;D costs</p>"))
}
