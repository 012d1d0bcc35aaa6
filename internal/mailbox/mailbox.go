// Package mailbox reads exported newsletter messages into documents.
package mailbox

import (
	"bufio"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cognicore/topicmine/internal/logging"
	"github.com/cognicore/topicmine/pkg/topicmine/ingest"
)

// maxLine bounds one exported message; HTML newsletters can be large
const maxLine = 16 << 20

// Message is one exported newsletter message
type Message struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Sender     string    `json:"sender"`
	Date       string    `json:"date"`
	Timestamp  time.Time `json:"timestamp"`
	Body       string    `json:"body"`
	BodyFormat string    `json:"body_format"` // "plain" (default) or "html"
}

// Document converts the message to engine input, flattening HTML bodies
func (m Message) Document() ingest.Document {
	body := m.Body
	if strings.EqualFold(m.BodyFormat, "html") {
		body = ingest.HTMLToText(body)
	}
	return ingest.Document{
		ID:        m.ID,
		Subject:   m.Subject,
		Body:      body,
		Sender:    m.Sender,
		Date:      m.Date,
		Timestamp: m.Timestamp,
	}
}

// LoadFromJSONL loads messages from a JSONL file, one message per line
func LoadFromJSONL(path string, logger *log.Logger) ([]ingest.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	docs, err := Read(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// Read decodes JSONL messages from r. Malformed lines and messages with no
// text are skipped with a warning.
func Read(r io.Reader, logger *log.Logger) ([]ingest.Document, error) {
	logger = logging.OrDiscard(logger)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var docs []ingest.Document
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			logger.Warn("skipping malformed message", "line", lineNo, "err", err)
			continue
		}
		doc := msg.Document()
		if err := doc.Validate(); err != nil {
			logger.Warn("skipping empty message", "line", lineNo, "id", msg.ID)
			continue
		}
		if doc.ID == "" {
			doc.ID = syntheticID(doc)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan messages: %w", err)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid messages found")
	}
	return docs, nil
}

// syntheticID derives a stable id for messages exported without one
func syntheticID(d ingest.Document) string {
	h := fnv.New64a()
	for _, part := range []string{d.Sender, d.Subject, d.Date, d.Timestamp.UTC().String()} {
		_, _ = h.Write([]byte(part))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("msg-%016x", h.Sum64())
}
