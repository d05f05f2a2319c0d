// internal/service/listening/pipeline.go

package listening

import (
	"math"
	"strings"
	"time"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

// RankOptions contains the weighting tables and thresholds used when
// turning raw posts into a ranked result set.
type RankOptions struct {
	// MinScore is the inclusive final-score floor for keeping a post.
	MinScore float64

	// EngagementDivisor converts raw engagement into a 0-10 score.
	// MinEngagement is the raw floor below which a post is dropped.
	EngagementDivisor float64
	MinEngagement     float64

	// PriorityWeights and CategoryWeights map source metadata to score
	// bonuses. Unknown keys default to weight 1.
	PriorityWeights map[string]float64
	CategoryWeights map[string]float64
}

// categoryRule classifies a post by markers found among its matched
// trending terms. Markers cover both Russian and English stems.
type categoryRule struct {
	name    string
	markers []string
}

var categoryRules = []categoryRule{
	{name: "sailing", markers: []string{"яхт", "sail", "регат"}},
	{name: "fashion", markers: []string{"мод", "fashion", "стил"}},
	{name: "luxury", markers: []string{"премиум", "luxury", "люкс"}},
}

const defaultCategory = "lifestyle"

// Ranker combines relevance, engagement and source metadata into final
// scores and filters out posts below the configured thresholds.
type Ranker struct {
	scorer *Scorer
}

// NewRanker creates a ranker backed by the given relevance scorer.
func NewRanker(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Rank scores every post against the trending set and drops posts below
// the thresholds. The final score averages four components and is
// clamped to 10. Survivors keep their input order; sorting is left to
// the caller.
func (r *Ranker) Rank(posts []post.Post, set trending.Set, opts RankOptions) []post.ScoredPost {
	divisor := opts.EngagementDivisor
	if divisor <= 0 {
		divisor = 1
	}

	scored := make([]post.ScoredPost, 0, len(posts))
	now := time.Now().UTC()

	for _, p := range posts {
		if p.Engagement.Total < opts.MinEngagement {
			continue
		}

		rel := r.scorer.Score(p, set)

		// Integer-style division: whole multiples of the divisor only.
		engScore := math.Floor(p.Engagement.Total / divisor)
		if engScore > 10 {
			engScore = 10
		}

		prio := lookupWeight(opts.PriorityWeights, p.SourcePriority)
		cat := lookupWeight(opts.CategoryWeights, p.SourceCategory)

		final := (rel.Total + engScore + prio + cat) / 4
		if final > 10 {
			final = 10
		}
		if final < opts.MinScore {
			continue
		}

		scored = append(scored, post.ScoredPost{
			Post:            p,
			Relevance:       rel,
			EngagementScore: engScore,
			PriorityBonus:   prio,
			CategoryBonus:   cat,
			FinalScore:      final,
			ContentCategory: classifyMatches(rel),
			ProcessedAt:     now,
		})
	}

	return scored
}

func lookupWeight(weights map[string]float64, key string) float64 {
	if w, ok := weights[strings.ToLower(key)]; ok {
		return w
	}
	return 1
}

// classifyMatches assigns a content category from the matched-term
// evidence. A post whose text mentions a domain without any trending
// match stays in the default category.
func classifyMatches(rel post.Relevance) string {
	for _, rule := range categoryRules {
		for _, m := range rule.markers {
			for _, w := range rel.MatchedWords {
				if strings.Contains(w, m) {
					return rule.name
				}
			}
			for _, ph := range rel.MatchedPhrases {
				if strings.Contains(ph, m) {
					return rule.name
				}
			}
		}
	}
	return defaultCategory
}
