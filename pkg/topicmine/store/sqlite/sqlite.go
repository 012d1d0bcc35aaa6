package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/topicmine/pkg/topicmine/internalerr"
	"github.com/cognicore/topicmine/pkg/topicmine/store"
)

// timeLayout is fixed-width UTC so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}
	// pragmas are per connection
	db.SetMaxOpenConns(1)

	// WAL journal
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %v: %w", err, internalerr.ErrStoreUnavailable)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS docs (
	id TEXT PRIMARY KEY,
	subject TEXT,
	sender TEXT,
	body TEXT,
	raw_date TEXT,
	published_at TEXT,
	ingested_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS docs_published_at ON docs(published_at);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	backend TEXT NOT NULL,
	num_topics INTEGER NOT NULL,
	doc_count INTEGER NOT NULL,
	since TEXT
);

CREATE TABLE IF NOT EXISTS run_topics (
	run_id TEXT NOT NULL,
	rank INTEGER NOT NULL,
	label TEXT NOT NULL,
	phrase TEXT NOT NULL,
	related TEXT,
	score REAL NOT NULL,
	source TEXT,
	PRIMARY KEY(run_id, rank),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS stoplist (
	token TEXT PRIMARY KEY
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertDoc inserts or updates a document, keyed by message id
func (s *sqliteStore) UpsertDoc(ctx context.Context, d store.Doc) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("sqlite: upsert doc without id: %w", internalerr.ErrInvalidInput)
	}
	if d.IngestedAt.IsZero() {
		d.IngestedAt = time.Now()
	}

	const stmt = `
INSERT INTO docs (id, subject, sender, body, raw_date, published_at, ingested_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	subject=excluded.subject,
	sender=excluded.sender,
	body=excluded.body,
	raw_date=excluded.raw_date,
	published_at=excluded.published_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		d.ID,
		d.Subject,
		d.Sender,
		d.Body,
		d.RawDate,
		formatTime(d.PublishedAt),
		formatTime(d.IngestedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert doc %s: %w", d.ID, err)
	}
	return nil
}

// GetDoc returns a document by message id
func (s *sqliteStore) GetDoc(ctx context.Context, id string) (store.Doc, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, subject, sender, body, raw_date, published_at, ingested_at
FROM docs WHERE id = ?;
`, id)
	d, err := scanDoc(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Doc{}, false, nil
	}
	if err != nil {
		return store.Doc{}, false, fmt.Errorf("sqlite: get doc %s: %w", id, err)
	}
	return d, true, nil
}

// DocsSince implements store.Store
func (s *sqliteStore) DocsSince(ctx context.Context, since time.Time, limit int) ([]store.Doc, error) {
	query := `
SELECT id, subject, sender, body, raw_date, published_at, ingested_at
FROM docs`
	var args []interface{}
	if !since.IsZero() {
		query += ` WHERE published_at IS NULL OR published_at >= ?`
		args = append(args, formatTime(since))
	}
	query += ` ORDER BY published_at IS NULL, published_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: docs since: %w", err)
	}
	defer rows.Close()

	var docs []store.Doc
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan doc: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// CountDocs returns the number of stored documents
func (s *sqliteStore) CountDocs(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM docs`).Scan(&total)
	return total, err
}

// SaveRun records a run and its topics in a single transaction
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("sqlite: save run without id: %w", internalerr.ErrInvalidInput)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, created_at, backend, num_topics, doc_count, since)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at=excluded.created_at,
	backend=excluded.backend,
	num_topics=excluded.num_topics,
	doc_count=excluded.doc_count,
	since=excluded.since;
`, r.ID, formatTime(r.CreatedAt), r.Backend, r.NumTopics, r.DocCount, formatTime(r.Since))
	if err != nil {
		return fmt.Errorf("sqlite: save run %s: %w", r.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_topics WHERE run_id = ?`, r.ID); err != nil {
		return err
	}
	if len(r.Topics) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_topics (run_id, rank, label, phrase, related, score, source)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, t := range r.Topics {
			relatedJSON, err := json.Marshal(t.Related)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, r.ID, t.Rank, t.Label, t.Phrase, string(relatedJSON), t.Score, t.Source); err != nil {
				return fmt.Errorf("sqlite: save run topic %d: %w", t.Rank, err)
			}
		}
	}

	return tx.Commit()
}

// GetRun returns a run with its topics, or ErrNotFound
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, created_at, backend, num_topics, doc_count, since
FROM runs WHERE id = ?;
`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("sqlite: run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("sqlite: get run %s: %w", id, err)
	}
	if r.Topics, err = s.loadRunTopics(ctx, id); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// ListRuns returns the most recent runs first, with their topics
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, created_at, backend, num_topics, doc_count, since
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}

	var runs []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range runs {
		if runs[i].Topics, err = s.loadRunTopics(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// AddStopwords adds tokens to the persisted stoplist
func (s *sqliteStore) AddStopwords(ctx context.Context, tokens []string) error {
	return s.execTokens(ctx, `INSERT OR IGNORE INTO stoplist (token) VALUES (?)`, tokens)
}

// RemoveStopwords removes tokens from the persisted stoplist
func (s *sqliteStore) RemoveStopwords(ctx context.Context, tokens []string) error {
	return s.execTokens(ctx, `DELETE FROM stoplist WHERE token = ?`, tokens)
}

// Stopwords returns the persisted stoplist, sorted
func (s *sqliteStore) Stopwords(ctx context.Context) ([]string, error) {
	return s.loadStringColumn(ctx, `SELECT token FROM stoplist ORDER BY token`)
}

func (s *sqliteStore) execTokens(ctx context.Context, query string, tokens []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, tok := range uniqueStrings(tokens) {
		if _, err := stmt.ExecContext(ctx, tok); err != nil {
			return fmt.Errorf("sqlite: stoplist %q: %w", tok, err)
		}
	}
	return tx.Commit()
}

func (s *sqliteStore) loadRunTopics(ctx context.Context, runID string) ([]store.RunTopic, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT rank, label, phrase, related, score, source
FROM run_topics WHERE run_id = ?
ORDER BY rank;
`, runID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: load run topics: %w", err)
	}
	defer rows.Close()

	var out []store.RunTopic
	for rows.Next() {
		var t store.RunTopic
		var relatedJSON, source sql.NullString
		if err := rows.Scan(&t.Rank, &t.Label, &t.Phrase, &relatedJSON, &t.Score, &source); err != nil {
			return nil, err
		}
		if relatedJSON.Valid && relatedJSON.String != "" {
			if err := json.Unmarshal([]byte(relatedJSON.String), &t.Related); err != nil {
				return nil, err
			}
		}
		t.Source = source.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadStringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var val string
		if err := rows.Scan(&val); err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDoc(row scanner) (store.Doc, error) {
	var d store.Doc
	var subject, sender, body, rawDate, published sql.NullString
	var ingested string
	if err := row.Scan(&d.ID, &subject, &sender, &body, &rawDate, &published, &ingested); err != nil {
		return store.Doc{}, err
	}
	d.Subject = subject.String
	d.Sender = sender.String
	d.Body = body.String
	d.RawDate = rawDate.String
	var err error
	if d.PublishedAt, err = parseTime(published); err != nil {
		return store.Doc{}, err
	}
	if d.IngestedAt, err = parseTime(sql.NullString{String: ingested, Valid: true}); err != nil {
		return store.Doc{}, err
	}
	return d, nil
}

func scanRun(row scanner) (store.Run, error) {
	var r store.Run
	var created string
	var since sql.NullString
	if err := row.Scan(&r.ID, &created, &r.Backend, &r.NumTopics, &r.DocCount, &since); err != nil {
		return store.Run{}, err
	}
	var err error
	if r.CreatedAt, err = parseTime(sql.NullString{String: created, Valid: true}); err != nil {
		return store.Run{}, err
	}
	if r.Since, err = parseTime(since); err != nil {
		return store.Run{}, err
	}
	return r, nil
}

// formatTime returns nil for the zero time so it is stored as NULL
func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", v.String, err)
	}
	return t, nil
}

func uniqueStrings(in []string) []string {
	set := make(map[string]struct{}, len(in))
	var out []string
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
