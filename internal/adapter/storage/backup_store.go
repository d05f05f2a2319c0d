// internal/adapter/storage/backup_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/scan"
	"brandpulse/internal/domain/trending"
)

// backup IDs double as file names, so the format is strict.
var backupIDPattern = regexp.MustCompile(`^backup_\d+_[0-9a-f]{8}$`)

// FileBackupStore persists scan results as JSON files on local disk so
// results survive a primary-storage outage.
type FileBackupStore struct {
	dir string
}

// NewFileBackupStore creates the store, making the directory if needed.
func NewFileBackupStore(dir string) (*FileBackupStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}
	return &FileBackupStore{dir: dir}, nil
}

// Record writes a backup file and returns its ID. The ID embeds the
// unix timestamp so files sort chronologically by name.
func (s *FileBackupStore) Record(label string, posts []post.ScoredPost, set trending.Set) (string, error) {
	now := time.Now().UTC()
	id := fmt.Sprintf("backup_%d_%s", now.Unix(), strings.ReplaceAll(uuid.New().String(), "-", "")[:8])

	b := scan.Backup{
		ID:        id,
		Timestamp: now,
		Label:     label,
		PostCount: len(posts),
		Posts:     posts,
		Trending:  set,
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling backup: %w", err)
	}

	path := filepath.Join(s.dir, id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup file: %w", err)
	}

	return id, nil
}

// List returns summaries of stored backups, newest first. Files that
// cannot be parsed are skipped rather than failing the listing.
func (s *FileBackupStore) List(ctx context.Context) ([]scan.BackupSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var summaries []scan.BackupSummary
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if !backupIDPattern.MatchString(id) {
			continue
		}

		b, err := s.read(id)
		if err != nil {
			continue
		}

		summaries = append(summaries, scan.BackupSummary{
			ID:        b.ID,
			Timestamp: b.Timestamp,
			Label:     b.Label,
			PostCount: b.PostCount,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})

	return summaries, nil
}

// Retrieve loads one backup in full.
func (s *FileBackupStore) Retrieve(ctx context.Context, id string) (*scan.Backup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !backupIDPattern.MatchString(id) {
		return nil, scan.ErrBackupNotFound
	}

	b, err := s.read(id)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, scan.ErrBackupNotFound
		}
		return nil, fmt.Errorf("reading backup %s: %w", id, err)
	}
	return b, nil
}

func (s *FileBackupStore) read(id string) (*scan.Backup, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		return nil, err
	}

	var b scan.Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
