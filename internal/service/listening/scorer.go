// internal/service/listening/scorer.go

package listening

import (
	"strings"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

// Evidence lists are bounded so payloads stay small even when a post
// overlaps most of the trending set. Scores keep accumulating past the
// caps.
const (
	maxMatchedWords   = 10
	maxMatchedPhrases = 5
)

// ScorerConfig contains configuration for relevance scoring.
type ScorerConfig struct {
	// BrandTerms are matched as substrings against lowercased content.
	BrandTerms []string

	// Caps and divisors for trending-term contributions. A trending word
	// contributes count/WordDivisor points up to WordCap; phrases use
	// PhraseDivisor and PhraseCap.
	WordCap       float64
	WordDivisor   int
	PhraseCap     float64
	PhraseDivisor int

	// BrandWeight is added once per matched brand term.
	BrandWeight float64

	// MaxScore clamps the total.
	MaxScore float64
}

// DefaultScorerConfig returns the scoring defaults.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		WordCap:       3,
		WordDivisor:   100,
		PhraseCap:     5,
		PhraseDivisor: 50,
		BrandWeight:   5,
		MaxScore:      10,
	}
}

// Scorer computes how relevant a post is to the brand, combining direct
// brand-term hits with overlap against the current trending set.
type Scorer struct {
	config ScorerConfig
}

// NewScorer creates a scorer.
func NewScorer(config ScorerConfig) *Scorer {
	def := DefaultScorerConfig()
	if config.WordDivisor <= 0 {
		config.WordDivisor = def.WordDivisor
	}
	if config.PhraseDivisor <= 0 {
		config.PhraseDivisor = def.PhraseDivisor
	}
	if config.WordCap <= 0 {
		config.WordCap = def.WordCap
	}
	if config.PhraseCap <= 0 {
		config.PhraseCap = def.PhraseCap
	}
	if config.BrandWeight <= 0 {
		config.BrandWeight = def.BrandWeight
	}
	if config.MaxScore <= 0 {
		config.MaxScore = def.MaxScore
	}
	return &Scorer{config: config}
}

// Score evaluates a single post against the trending set. Matching is
// substring-based on lowercased content, so inflected forms of a term
// still hit.
func (s *Scorer) Score(p post.Post, set trending.Set) post.Relevance {
	content := strings.ToLower(p.Content)
	rel := post.Relevance{}

	for _, term := range s.config.BrandTerms {
		if strings.Contains(content, strings.ToLower(term)) {
			rel.BrandScore += s.config.BrandWeight
		}
	}

	for _, w := range set.Words {
		if strings.Contains(content, w.Text) {
			pts := float64(w.Count / s.config.WordDivisor)
			if pts > s.config.WordCap {
				pts = s.config.WordCap
			}
			rel.WordScore += pts
			if len(rel.MatchedWords) < maxMatchedWords {
				rel.MatchedWords = append(rel.MatchedWords, w.Text)
			}
		}
	}

	for _, ph := range set.Phrases {
		if strings.Contains(content, ph.Text) {
			pts := float64(ph.Count / s.config.PhraseDivisor)
			if pts > s.config.PhraseCap {
				pts = s.config.PhraseCap
			}
			rel.PhraseScore += pts
			if len(rel.MatchedPhrases) < maxMatchedPhrases {
				rel.MatchedPhrases = append(rel.MatchedPhrases, ph.Text)
			}
		}
	}

	rel.Total = rel.BrandScore + rel.WordScore + rel.PhraseScore
	if rel.Total > s.config.MaxScore {
		rel.Total = s.config.MaxScore
	}
	return rel
}
