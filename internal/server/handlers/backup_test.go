package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/scan"
	"brandpulse/internal/domain/trending"
)

type stubBackupStore struct {
	summaries []scan.BackupSummary
	backups   map[string]*scan.Backup
}

func (s *stubBackupStore) Record(string, []post.ScoredPost, trending.Set) (string, error) {
	return "", nil
}

func (s *stubBackupStore) List(context.Context) ([]scan.BackupSummary, error) {
	return s.summaries, nil
}

func (s *stubBackupStore) Retrieve(_ context.Context, id string) (*scan.Backup, error) {
	if b, ok := s.backups[id]; ok {
		return b, nil
	}
	return nil, scan.ErrBackupNotFound
}

func TestListBackups(t *testing.T) {
	h := NewBackupHandler(&stubBackupStore{
		summaries: []scan.BackupSummary{
			{ID: "backup_1700000100_bbbbbbbb", Timestamp: time.Unix(1700000100, 0), PostCount: 5},
		},
	})

	req := httptest.NewRequest("GET", "/api/v1/recovery/backups", nil)
	rec := httptest.NewRecorder()
	h.ListBackups(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Total   int                  `json:"total"`
		Backups []scan.BackupSummary `json:"backups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Total != 1 || len(resp.Backups) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestListBackupsEmpty(t *testing.T) {
	h := NewBackupHandler(&stubBackupStore{})

	req := httptest.NewRequest("GET", "/api/v1/recovery/backups", nil)
	rec := httptest.NewRecorder()
	h.ListBackups(rec, req)

	var resp struct {
		Backups []scan.BackupSummary `json:"backups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Backups == nil {
		t.Error("backups should encode as an empty array, not null")
	}
}

func TestGetBackup(t *testing.T) {
	id := "backup_1700000000_aaaaaaaa"
	h := NewBackupHandler(&stubBackupStore{
		backups: map[string]*scan.Backup{
			id: {ID: id, Label: "telegram_scan", PostCount: 2},
		},
	})

	router := chi.NewRouter()
	router.Get("/api/v1/recovery/backups/{id}", h.GetBackup)

	req := httptest.NewRequest("GET", "/api/v1/recovery/backups/"+id, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var b scan.Backup
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if b.ID != id || b.Label != "telegram_scan" {
		t.Errorf("backup = %+v", b)
	}
}

func TestGetBackupNotFound(t *testing.T) {
	h := NewBackupHandler(&stubBackupStore{})

	router := chi.NewRouter()
	router.Get("/api/v1/recovery/backups/{id}", h.GetBackup)

	req := httptest.NewRequest("GET", "/api/v1/recovery/backups/backup_1_aaaaaaaa", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
