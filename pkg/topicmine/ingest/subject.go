package ingest

import (
	"regexp"
	"strings"
)

var (
	bracketPrefix = regexp.MustCompile(`^\[.*?\]`)
	labelPrefix   = regexp.MustCompile(`^.*?:`)
)

// CleanSubject lowercases a subject line and strips a leading "[Label]" and a
// leading "Prefix:" segment, as newsletters commonly brand their subjects.
func CleanSubject(subject string) string {
	s := strings.ToLower(subject)
	s = strings.TrimSpace(bracketPrefix.ReplaceAllString(s, ""))
	s = strings.TrimSpace(labelPrefix.ReplaceAllString(s, ""))
	return s
}
