package stoplist

import (
	"sort"
	"testing"
)

func TestCheckRejects(t *testing.T) {
	sm := NewDefaultManager()

	cases := []struct {
		phrase string
		want   func(Reason) bool
	}{
		{"email header", func(r Reason) bool { return r.Layout && r.Token == "header" }},
		{"hiring engineers", func(r Reason) bool { return r.Metadata && r.Token == "hiring" }},
		{"tech news roundup", func(r Reason) bool { return r.NewsWord }},
		{"march statement", func(r Reason) bool { return r.MonthBilling }},
	}
	for _, tc := range cases {
		r, rejected := sm.Check(tc.phrase)
		if !rejected {
			t.Errorf("%q should be rejected", tc.phrase)
			continue
		}
		if !tc.want(r) {
			t.Errorf("%q: unexpected reason %s", tc.phrase, r)
		}
	}
}

func TestCheckAllows(t *testing.T) {
	sm := NewDefaultManager()

	for _, phrase := range []string{"gpu shortage", "openai agents", "march madness", "newsroom layoffs"} {
		if r, rejected := sm.Check(phrase); rejected {
			t.Errorf("%q should be allowed, got %s", phrase, r)
		}
	}
}

func TestReasonString(t *testing.T) {
	r, _ := NewDefaultManager().Check("footer news")
	if got := r.String(); got != "layout,news(footer)" {
		t.Errorf("Reason string = %q", got)
	}
	if got := (Reason{}).String(); got != "none" {
		t.Errorf("Empty reason = %q", got)
	}
}

func TestIsStopAndNoise(t *testing.T) {
	sm := NewDefaultManager()

	if !sm.IsStop("the") || !sm.IsStop("newsletter") || !sm.IsStop("march") {
		t.Error("English, noise and month words should all be lexical stopwords")
	}
	if sm.IsNoise("the") {
		t.Error("Plain English stopwords are not noise")
	}
	if !sm.IsNoise("unsubscribe") {
		t.Error("'unsubscribe' should be noise")
	}
	if !sm.HasNoise("weekly robotics") || sm.HasNoise("robotics startup") {
		t.Error("HasNoise should look at every token")
	}
}

func TestStopwordsSorted(t *testing.T) {
	sm := NewManager(Vocabulary{English: []string{"the", "and"}, Noise: []string{"weekly"}})

	all := sm.Stopwords()
	if len(all) != 3 || !sort.StringsAreSorted(all) {
		t.Errorf("Stopwords() = %v", all)
	}
	english := sm.EnglishStopwords()
	if len(english) != 2 || english[0] != "and" {
		t.Errorf("EnglishStopwords() = %v", english)
	}
}

func TestIsBreaking(t *testing.T) {
	sm := NewDefaultManager()

	if !sm.IsBreaking("OpenAI LAUNCHES agents") {
		t.Error("Indicator match should ignore case")
	}
	if !sm.IsBreaking("Just in: GPU prices fall") {
		t.Error("Multi-word indicators should match")
	}
	if sm.IsBreaking("Weekly robotics digest") {
		t.Error("No indicator present")
	}
}

func TestHasCoreTerm(t *testing.T) {
	sm := NewDefaultManager()

	if !sm.HasCoreTerm("new agents") {
		t.Error("'agents' is a core term")
	}
	if sm.HasCoreTerm("weekly digest") {
		t.Error("No core term present")
	}
}

func TestMerge(t *testing.T) {
	v := Vocabulary{Noise: []string{"a", "b"}}.Merge(Vocabulary{Noise: []string{"b", "c"}, CoreTerms: []string{"robot"}})

	if len(v.Noise) != 3 || v.Noise[2] != "c" {
		t.Errorf("Merged noise = %v", v.Noise)
	}
	if len(v.CoreTerms) != 1 {
		t.Errorf("Merged core terms = %v", v.CoreTerms)
	}
}
