// Package excerpt finds a readable example sentence for a topic in the corpus
// it was mined from.
package excerpt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
	"github.com/cognicore/topicmine/pkg/topicmine/topics"
)

// Display limits
const (
	MinSentenceLen  = 20
	MaxDisplayLen   = 120
	MaxSpecialRatio = 0.3
	MaxPipes        = 2
)

// Filter decides whether a sentence is fit to show as an example
type Filter struct {
	// Reject is vocabulary that disqualifies a sentence anywhere in it
	// (job ads, subscription boilerplate).
	Reject []string
	// Prefixes disqualify a sentence that starts with them.
	Prefixes []string
	// Account is vocabulary for account and billing statements.
	Account []string
	// Months and MonthBilling together reject dated billing lines.
	Months       []string
	MonthBilling []string
}

// DefaultFilter returns the built-in sentence filter
func DefaultFilter() Filter {
	return Filter{
		Reject:   []string{"hiring", "job", "apply", "position", "subscribe", "unsubscribe", "email"},
		Prefixes: []string{"log in", "sign in"},
		Account: []string{
			"your account", "bank account", "payment", "statement", "balance",
			"bill", "invoice", "directpay", "debit",
		},
		Months: []string{
			"january", "february", "march", "april", "may", "june",
			"july", "august", "september", "october", "november", "december",
		},
		MonthBilling: []string{"account", "payment", "statement", "bill"},
	}
}

// Basic applies the structural checks only: table residue, very short
// sentences, symbol-heavy sentences, rejected vocabulary and login prompts.
func (f Filter) Basic(sentence string) bool {
	s := strings.TrimSpace(sentence)
	if strings.Count(s, "|") > MaxPipes {
		return false
	}
	if utf8.RuneCountInString(s) < MinSentenceLen {
		return false
	}
	if specialRatio(s) > MaxSpecialRatio {
		return false
	}
	lower := strings.ToLower(s)
	if containsAny(lower, f.Reject) {
		return false
	}
	for _, p := range f.Prefixes {
		if strings.HasPrefix(lower, p) {
			return false
		}
	}
	return true
}

// Good applies Basic plus the markdown, account and month+billing checks.
func (f Filter) Good(sentence string) bool {
	s := strings.TrimSpace(sentence)
	if !f.Basic(s) {
		return false
	}
	if strings.HasPrefix(s, "*") && strings.HasSuffix(s, "*") {
		return false
	}
	lower := strings.ToLower(s)
	if containsAny(lower, f.Account) {
		return false
	}
	if containsAny(lower, f.Months) && containsAny(lower, f.MonthBilling) {
		return false
	}
	return true
}

// Finder looks up example sentences
type Finder struct {
	filter Filter
}

// NewFinder creates a finder with the given filter
func NewFinder(f Filter) *Finder {
	return &Finder{filter: f}
}

// Find returns an example sentence for t, trying docs in order.
//
// A sentence containing the whole phrase that passes Good is preferred. When
// there is none, the first sentence containing any term of the phrase or its
// related terms that passes Basic is used. ok is false when nothing fits.
func (f *Finder) Find(t topics.Topic, docs []ingest.Document) (sentence string, ok bool) {
	phrase := strings.ToLower(strings.TrimSpace(t.Phrase))
	if phrase == "" {
		phrase = strings.ToLower(strings.TrimSpace(t.Label))
	}
	terms := topicTerms(phrase, t.Related)
	if phrase == "" && len(terms) == 0 {
		return "", false
	}

	var fallback string
	for _, d := range docs {
		for _, s := range Sentences(d.Body) {
			lower := strings.ToLower(s)
			if phrase != "" && strings.Contains(lower, phrase) && f.filter.Good(s) {
				return s, true
			}
			if fallback == "" && containsAny(lower, terms) && f.filter.Basic(s) {
				fallback = s
			}
		}
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}

// topicTerms splits phrase and related terms into words of three or more
// characters.
func topicTerms(phrase string, related []string) []string {
	var terms []string
	add := func(s string) {
		for _, w := range strings.Fields(strings.ToLower(s)) {
			if len(w) > 2 {
				terms = append(terms, w)
			}
		}
	}
	add(phrase)
	for _, r := range related {
		add(r)
	}
	return terms
}

var (
	sentenceEnd = regexp.MustCompile(`([.!?]+)\s+`)
	whitespace  = regexp.MustCompile(`[\s\x{00a0}]+`)
	escaped     = regexp.MustCompile(`\\([<>*` + "`" + `#])`)
	punctRun    = regexp.MustCompile(`[!?.](\s*[!?.])+ *`)
	htmlLike    = regexp.MustCompile(`<[^>]+>|&[a-zA-Z]+;`)
)

// Sentences splits text into trimmed sentences at terminal punctuation
// followed by whitespace. Whitespace inside a sentence is collapsed.
func Sentences(text string) []string {
	text = whitespace.ReplaceAllString(text, " ")
	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	var out []string
	for _, s := range strings.Split(marked, "\x00") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Clean prepares a sentence for display: markup is stripped, escaped
// markdown restored, whitespace and punctuation runs collapsed, and the
// result truncated to MaxDisplayLen with an ellipsis.
func Clean(text string) string {
	if htmlLike.MatchString(text) {
		text = ingest.HTMLToText(text)
	}
	text = escaped.ReplaceAllString(text, "$1")
	text = whitespace.ReplaceAllString(text, " ")
	text = punctRun.ReplaceAllString(text, ". ")
	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > MaxDisplayLen {
		text = string(r[:MaxDisplayLen-3]) + "..."
	}
	return text
}

func specialRatio(s string) float64 {
	if s == "" {
		return 0
	}
	special, total := 0, 0
	for _, r := range s {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			special++
		}
	}
	return float64(special) / float64(total)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
