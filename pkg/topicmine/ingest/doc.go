package ingest

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Document is one newsletter issue as handed to the topic miner.
// Body is expected to be plain text already; see HTMLToText for markup bodies.
type Document struct {
	ID        string // message id, optional
	Subject   string
	Body      string
	Sender    string
	Date      string    // raw header value, used when Timestamp is zero
	Timestamp time.Time // zero when absent
}

// Validate checks if the document carries any text to mine
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Subject) == "" && strings.TrimSpace(d.Body) == "" {
		return errors.New("document has neither subject nor body")
	}
	return nil
}

// Time resolves the document timestamp, parsing Date when Timestamp is unset.
// ok is false when the document is undated or its date cannot be parsed.
func (d *Document) Time() (t time.Time, ok bool, err error) {
	if !d.Timestamp.IsZero() {
		return d.Timestamp, true, nil
	}
	if strings.TrimSpace(d.Date) == "" {
		return time.Time{}, false, nil
	}
	parsed, err := ParseDate(d.Date)
	if err != nil {
		return time.Time{}, false, err
	}
	return parsed, true, nil
}

// fallbackLayouts covers dates that are close to, but not exactly, RFC 5322.
var fallbackLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an email Date header value.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := mail.ParseDate(raw); err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: unrecognised format", raw)
}
