package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/scan"
	"brandpulse/internal/domain/trending"
)

func TestBackupRoundTrip(t *testing.T) {
	store, err := NewFileBackupStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackupStore: %v", err)
	}

	posts := []post.ScoredPost{
		{
			Post:       post.Post{Platform: "telegram", ExternalID: "42", Content: "regatta"},
			FinalScore: 7.5,
		},
	}
	set := trending.Set{Words: []trending.Term{{Text: "regatta", Count: 3}}}

	id, err := store.Record("telegram_scan", posts, set)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !backupIDPattern.MatchString(id) {
		t.Fatalf("id %q does not match the expected format", id)
	}

	b, err := store.Retrieve(context.Background(), id)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if b.Label != "telegram_scan" || b.PostCount != 1 {
		t.Errorf("backup = %+v", b)
	}
	if len(b.Posts) != 1 || b.Posts[0].FinalScore != 7.5 {
		t.Errorf("posts not preserved: %+v", b.Posts)
	}
	if len(b.Trending.Words) != 1 || b.Trending.Words[0].Text != "regatta" {
		t.Errorf("trending not preserved: %+v", b.Trending)
	}
}

func TestBackupListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileBackupStore(dir)
	if err != nil {
		t.Fatalf("NewFileBackupStore: %v", err)
	}

	writeBackupFile(t, dir, "backup_1700000000_aaaaaaaa", time.Unix(1700000000, 0))
	writeBackupFile(t, dir, "backup_1700000100_bbbbbbbb", time.Unix(1700000100, 0))

	summaries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("len = %d, want 2", len(summaries))
	}
	if summaries[0].ID != "backup_1700000100_bbbbbbbb" {
		t.Errorf("order = %v, want newest first", summaries)
	}
}

func TestBackupListSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileBackupStore(dir)
	if err != nil {
		t.Fatalf("NewFileBackupStore: %v", err)
	}

	writeBackupFile(t, dir, "backup_1700000000_aaaaaaaa", time.Unix(1700000000, 0))
	if err := os.WriteFile(filepath.Join(dir, "backup_1700000001_cccccccc.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a backup"), 0o644); err != nil {
		t.Fatal(err)
	}

	summaries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("len = %d, want 1 (corrupt and foreign files skipped)", len(summaries))
	}
}

func TestBackupRetrieveMissing(t *testing.T) {
	store, err := NewFileBackupStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackupStore: %v", err)
	}

	_, err = store.Retrieve(context.Background(), "backup_1700000000_deadbeef")
	if !errors.Is(err, scan.ErrBackupNotFound) {
		t.Errorf("err = %v, want ErrBackupNotFound", err)
	}
}

func TestBackupRetrieveRejectsBadID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileBackupStore(dir)
	if err != nil {
		t.Fatalf("NewFileBackupStore: %v", err)
	}

	for _, id := range []string{"../etc/passwd", "backup_x", "backup_1_ZZZZZZZZ", ""} {
		if _, err := store.Retrieve(context.Background(), id); !errors.Is(err, scan.ErrBackupNotFound) {
			t.Errorf("Retrieve(%q) err = %v, want ErrBackupNotFound", id, err)
		}
	}
}

func writeBackupFile(t *testing.T, dir, id string, ts time.Time) {
	t.Helper()

	b := scan.Backup{ID: id, Timestamp: ts.UTC(), Label: "test", PostCount: 0}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}
