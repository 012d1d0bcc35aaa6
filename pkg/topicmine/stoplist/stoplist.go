package stoplist

import (
	"sort"
	"strings"
)

// Manager answers stopword and topic-filter questions over a Vocabulary
type Manager struct {
	stops     map[string]struct{}
	english   map[string]struct{}
	noise     map[string]struct{}
	layout    map[string]struct{}
	metadata  map[string]struct{}
	months    map[string]struct{}
	billing   map[string]struct{}
	core      map[string]struct{}
	breaking  []string
	newsToken string
}

// Reason explains why a phrase was rejected as a topic
type Reason struct {
	Token        string // first offending token, if any
	Layout       bool   // token in the layout set
	Metadata     bool   // token in the newsletter metadata set
	NewsWord     bool   // contains the literal word "news"
	MonthBilling bool   // month name together with a billing word
}

// String renders the reason for logs.
func (r Reason) String() string {
	var parts []string
	if r.Layout {
		parts = append(parts, "layout")
	}
	if r.Metadata {
		parts = append(parts, "metadata")
	}
	if r.NewsWord {
		parts = append(parts, "news")
	}
	if r.MonthBilling {
		parts = append(parts, "month+billing")
	}
	if len(parts) == 0 {
		return "none"
	}
	s := strings.Join(parts, ",")
	if r.Token != "" {
		s += "(" + r.Token + ")"
	}
	return s
}

// NewManager creates a manager over the given vocabulary
func NewManager(v Vocabulary) *Manager {
	m := &Manager{
		stops:     toSet(v.English, v.Noise, v.Weekdays, v.Months),
		english:   toSet(v.English),
		noise:     toSet(v.Noise, v.Weekdays, v.Months),
		layout:    toSet(v.Layout),
		metadata:  toSet(v.Metadata),
		months:    toSet(v.Months),
		billing:   toSet(v.Billing),
		core:      toSet(v.CoreTerms),
		newsToken: "news",
	}
	for _, b := range v.Breaking {
		m.breaking = append(m.breaking, strings.ToLower(b))
	}
	return m
}

// NewDefaultManager creates a manager over DefaultVocabulary
func NewDefaultManager() *Manager {
	return NewManager(DefaultVocabulary())
}

// IsStop checks if a token is a stopword for lexical mining
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// IsNoise checks if a token is newsletter noise (a softer test than IsStop:
// standard English stopwords are not noise).
func (m *Manager) IsNoise(token string) bool {
	_, ok := m.noise[token]
	return ok
}

// Stopwords returns all lexical stopwords, sorted
func (m *Manager) Stopwords() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// EnglishStopwords returns only the standard English stopwords, sorted
func (m *Manager) EnglishStopwords() []string {
	result := make([]string, 0, len(m.english))
	for s := range m.english {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Check reports whether phrase must be rejected as a topic and why.
// A phrase is rejected when any token is layout or metadata vocabulary, when
// it contains the word "news", or when it pairs a month with a billing word.
func (m *Manager) Check(phrase string) (Reason, bool) {
	var r Reason
	hasMonth, hasBilling := false, false

	for _, tok := range strings.Fields(strings.ToLower(phrase)) {
		if _, ok := m.layout[tok]; ok && !r.Layout {
			r.Layout = true
			r.setToken(tok)
		}
		if _, ok := m.metadata[tok]; ok && !r.Metadata {
			r.Metadata = true
			r.setToken(tok)
		}
		if tok == m.newsToken && !r.NewsWord {
			r.NewsWord = true
			r.setToken(tok)
		}
		if _, ok := m.months[tok]; ok {
			hasMonth = true
		}
		if _, ok := m.billing[tok]; ok {
			hasBilling = true
		}
	}
	r.MonthBilling = hasMonth && hasBilling

	rejected := r.Layout || r.Metadata || r.NewsWord || r.MonthBilling
	return r, rejected
}

// HasNoise reports whether any token of phrase is noise vocabulary.
func (m *Manager) HasNoise(phrase string) bool {
	for _, tok := range strings.Fields(strings.ToLower(phrase)) {
		if m.IsNoise(tok) {
			return true
		}
	}
	return false
}

// HasCoreTerm reports whether any token of phrase is a core domain term.
func (m *Manager) HasCoreTerm(phrase string) bool {
	for _, tok := range strings.Fields(strings.ToLower(phrase)) {
		if _, ok := m.core[tok]; ok {
			return true
		}
	}
	return false
}

// IsBreaking reports whether text contains a breaking-news indicator.
// Matching is by substring on the lowercased text.
func (m *Manager) IsBreaking(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range m.breaking {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func (r *Reason) setToken(tok string) {
	if r.Token == "" {
		r.Token = tok
	}
}

func toSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range lists {
		for _, w := range list {
			set[strings.ToLower(w)] = struct{}{}
		}
	}
	return set
}
