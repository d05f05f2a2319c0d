package source

import (
	"context"
	"time"
)

// Source describes one monitored channel or community from the roster.
type Source struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	ExternalID  string `json:"external_id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Language    string `json:"language"`
	Subscribers int    `json:"subscribers"`
	Active      bool   `json:"active"`
}

// ScanStats is the per-source outcome of one scan, written back to the roster.
type ScanStats struct {
	TotalPosts int
	AvgScore   float64
	ScannedAt  time.Time
}

// Store is the roster storage.
type Store interface {
	// List returns active sources, optionally restricted to one platform
	// (empty platform means all).
	List(ctx context.Context, platform string) ([]Source, error)

	// UpdateScanStats records the outcome of the latest scan for a source.
	UpdateScanStats(ctx context.Context, id string, stats ScanStats) error
}
