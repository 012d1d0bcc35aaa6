package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/topicmine/pkg/topicmine/store"
)

// TestSchemaCreationIdempotent tests that running initSchema multiple times is safe
func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	if err != nil {
		t.Fatalf("Count tables: %v", err)
	}
	expected := 4 // docs, runs, run_topics, stoplist
	if count != expected {
		t.Errorf("Expected %d tables, got %d", expected, count)
	}
}

// TestReopenPreservesData tests that a closed database can be reopened with its contents
func TestReopenPreservesData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	published := time.Date(2025, 3, 10, 8, 0, 0, 0, time.FixedZone("CET", 3600))

	st, err := OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := st.UpsertDoc(ctx, store.Doc{ID: "a", Subject: "GPU shortage", PublishedAt: published}); err != nil {
		t.Fatalf("UpsertDoc: %v", err)
	}
	if err := st.AddStopwords(ctx, []string{"roundup"}); err != nil {
		t.Fatalf("AddStopwords: %v", err)
	}
	st.Close()

	st, err = OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer st.Close()

	d, found, err := st.GetDoc(ctx, "a")
	if err != nil || !found {
		t.Fatalf("GetDoc after reopen: found=%v err=%v", found, err)
	}
	if !d.PublishedAt.Equal(published) {
		t.Errorf("PublishedAt = %v, want %v", d.PublishedAt, published)
	}
	if d.PublishedAt.Location() != time.UTC {
		t.Error("Stored times come back in UTC")
	}
	words, _ := st.Stopwords(ctx)
	if len(words) != 1 {
		t.Errorf("Stopwords after reopen = %v", words)
	}
}

// TestDeleteRunCascades tests that run topics go with their run
func TestDeleteRunCascades(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()

	run := store.Run{
		ID:        "run-1",
		CreatedAt: time.Now(),
		Backend:   "lexical",
		Topics:    []store.RunTopic{{Rank: 1, Label: "gpu", Phrase: "gpu", Score: 1}},
	}
	if err := st.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	db := st.(*sqliteStore).db
	if _, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		t.Fatalf("Delete run: %v", err)
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_topics`).Scan(&n); err != nil {
		t.Fatalf("Count topics: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected run topics to cascade, %d left", n)
	}
}
