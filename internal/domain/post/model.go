package post

import (
	"time"
)

// Engagement holds the raw interaction counters of a post together with
// the platform-weighted total the feed adapter computed from them. Which
// counters are populated depends on the platform.
type Engagement struct {
	Views    int     `json:"views" bson:"views"`
	Forwards int     `json:"forwards" bson:"forwards"`
	Likes    int     `json:"likes" bson:"likes"`
	Comments int     `json:"comments" bson:"comments"`
	Reposts  int     `json:"reposts" bson:"reposts"`
	Total    float64 `json:"total" bson:"total"`
}

// Post is one fetched post from a monitored source, immutable once built.
type Post struct {
	Platform       string     `json:"platform" bson:"platform"`
	SourceID       string     `json:"source_id" bson:"source_id"`
	SourceTitle    string     `json:"source_title" bson:"source_title"`
	SourceCategory string     `json:"source_category" bson:"source_category"`
	SourcePriority string     `json:"source_priority" bson:"source_priority"`
	ExternalID     string     `json:"external_id" bson:"external_id"`
	Content        string     `json:"content" bson:"content"`
	URL            string     `json:"url" bson:"url"`
	MediaType      string     `json:"media_type" bson:"media_type"`
	PublishedAt    time.Time  `json:"published_at" bson:"published_at"`
	Engagement     Engagement `json:"engagement" bson:"engagement"`
}

// Relevance is the keyword-analysis outcome for one post.
type Relevance struct {
	Total          float64  `json:"total_relevance" bson:"total_relevance"`
	BrandScore     float64  `json:"brand_score" bson:"brand_score"`
	WordScore      float64  `json:"word_score" bson:"word_score"`
	PhraseScore    float64  `json:"phrase_score" bson:"phrase_score"`
	MatchedWords   []string `json:"matched_words" bson:"matched_words"`
	MatchedPhrases []string `json:"matched_phrases" bson:"matched_phrases"`
}

// ScoredPost is a post that passed the ranking thresholds, assembled once
// by the ranker and never mutated afterwards.
type ScoredPost struct {
	Post            `bson:",inline"`
	Relevance       Relevance `json:"relevance" bson:"relevance"`
	EngagementScore float64   `json:"engagement_score" bson:"engagement_score"`
	PriorityBonus   float64   `json:"priority_bonus" bson:"priority_bonus"`
	CategoryBonus   float64   `json:"category_bonus" bson:"category_bonus"`
	FinalScore      float64   `json:"final_score" bson:"final_score"`
	ContentCategory string    `json:"content_category" bson:"content_category"`
	ProcessedAt     time.Time `json:"processed_at" bson:"processed_at"`
}
