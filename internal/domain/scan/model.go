package scan

import (
	"time"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

// Options are the per-request scan parameters. Zero values fall back to
// the configured defaults.
type Options struct {
	HoursBack int     `json:"hours_back"`
	MinScore  float64 `json:"min_score"`
	BatchSize int     `json:"batch_size"`
}

// PlatformReport is the per-platform slice of a combined scan.
type PlatformReport struct {
	PostCount int          `json:"posts_count"`
	Trending  trending.Set `json:"trending_keywords"`
}

// Result is the outcome of one scan, returned to the HTTP caller.
type Result struct {
	Source       string                    `json:"source"`
	Timestamp    time.Time                 `json:"timestamp"`
	Parameters   Options                   `json:"parameters"`
	TotalPosts   int                       `json:"total_posts"`
	Posts        []post.ScoredPost         `json:"posts"`
	Trending     trending.Set              `json:"trending_keywords"`
	Summary      Summary                   `json:"summary"`
	Platforms    map[string]PlatformReport `json:"platforms,omitempty"`
	BackupID     string                    `json:"backup_id,omitempty"`
	BackupError  string                    `json:"backup_error,omitempty"`
	PersistError string                    `json:"persist_error,omitempty"`
}

// Summary aggregates a ranked batch for the result payload.
type Summary struct {
	TotalCollected int            `json:"total_collected"`
	AvgScore       float64        `json:"avg_score"`
	TopCategory    string         `json:"top_category"`
	HighScorePosts int            `json:"high_score_posts"`
	Categories     map[string]int `json:"categories"`
}

// NewSummary computes the summary for a ranked batch.
func NewSummary(posts []post.ScoredPost) Summary {
	s := Summary{
		TotalCollected: len(posts),
		TopCategory:    "none",
		Categories:     map[string]int{},
	}

	if len(posts) == 0 {
		return s
	}

	var total float64
	for _, p := range posts {
		total += p.FinalScore
		if p.FinalScore >= 8 {
			s.HighScorePosts++
		}
		s.Categories[p.ContentCategory]++
	}
	s.AvgScore = total / float64(len(posts))

	top := -1
	for category, count := range s.Categories {
		if count > top || (count == top && category < s.TopCategory) {
			top = count
			s.TopCategory = category
		}
	}

	return s
}
