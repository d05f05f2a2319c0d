package scan

import (
	"context"
	"errors"
	"time"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

// ErrBackupNotFound is returned when a backup identifier resolves to nothing.
var ErrBackupNotFound = errors.New("backup not found")

// Backup is the durable record of one scan batch, written before any
// external persistence is attempted. Immutable after creation.
type Backup struct {
	ID        string            `json:"backup_id"`
	Timestamp time.Time         `json:"timestamp"`
	Label     string            `json:"label"`
	PostCount int               `json:"post_count"`
	Posts     []post.ScoredPost `json:"posts"`
	Trending  trending.Set      `json:"trending_keywords"`
}

// BackupSummary is the listing view of a backup record.
type BackupSummary struct {
	ID        string    `json:"backup_id"`
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
	PostCount int       `json:"post_count"`
}

// BackupStore durably records scan output so a failed downstream write
// never loses data.
type BackupStore interface {
	// Record writes a new backup and returns its identifier. It must
	// complete, or fail loudly, before the caller touches the external
	// sink.
	Record(label string, posts []post.ScoredPost, set trending.Set) (string, error)

	// List returns summaries of the available backups. An empty store
	// yields an empty list, not an error.
	List(ctx context.Context) ([]BackupSummary, error)

	// Retrieve loads a full backup record, or ErrBackupNotFound.
	Retrieve(ctx context.Context, id string) (*Backup, error)
}
