// internal/adapter/storage/source_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"brandpulse/internal/domain/source"
)

// SourceStore implements the source roster on Postgres.
type SourceStore struct {
	db *pgxpool.Pool
}

// NewSourceStore creates a new source store.
func NewSourceStore(db *pgxpool.Pool) *SourceStore {
	return &SourceStore{
		db: db,
	}
}

// List returns sources for a platform, most subscribed first. An empty
// platform returns every source.
func (s *SourceStore) List(ctx context.Context, platform string) ([]source.Source, error) {
	query := `
		SELECT
			id, platform, external_id, title, category,
			priority, language, subscribers, active
		FROM sources
	`

	args := []interface{}{}
	if platform != "" {
		query += " WHERE platform = $1"
		args = append(args, platform)
	}
	query += " ORDER BY subscribers DESC, id ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var sources []source.Source
	for rows.Next() {
		var src source.Source
		err := rows.Scan(
			&src.ID,
			&src.Platform,
			&src.ExternalID,
			&src.Title,
			&src.Category,
			&src.Priority,
			&src.Language,
			&src.Subscribers,
			&src.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning source: %w", err)
		}
		sources = append(sources, src)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}

	return sources, nil
}

// UpdateScanStats writes back per-source statistics after a scan.
func (s *SourceStore) UpdateScanStats(ctx context.Context, id string, stats source.ScanStats) error {
	query := `
		UPDATE sources
		SET
			last_scan_posts = $2,
			last_scan_avg_score = $3,
			last_scanned_at = $4
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query, id, stats.TotalPosts, stats.AvgScore, stats.ScannedAt)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source not found: %s", id)
	}

	return nil
}
