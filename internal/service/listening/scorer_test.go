package listening

import (
	"testing"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

func TestScoreBrandTerms(t *testing.T) {
	s := NewScorer(ScorerConfig{BrandTerms: []string{"north sails", "норт сейлс"}})

	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"single match", "New collection by North Sails is out", 5},
		{"both languages", "North Sails (Норт Сейлс) открывает магазин", 10},
		{"no match", "just another sailing story", 0},
		{"substring inside word", "northsailsy nonsense north sails", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rel := s.Score(post.Post{Content: tt.content}, trending.Set{})
			if rel.BrandScore != tt.want {
				t.Errorf("BrandScore = %v, want %v", rel.BrandScore, tt.want)
			}
		})
	}
}

func TestScoreTrendingContributions(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	set := trending.Set{
		Words: []trending.Term{
			{Text: "regatta", Count: 250},  // 250/100 -> 2 points
			{Text: "victory", Count: 1000}, // capped at 3
		},
		Phrases: []trending.Term{
			{Text: "sailing season", Count: 120}, // 120/50 -> 2 points
		},
	}

	rel := s.Score(post.Post{Content: "regatta victory in the sailing season"}, set)

	if rel.WordScore != 5 {
		t.Errorf("WordScore = %v, want 5 (2 + capped 3)", rel.WordScore)
	}
	if rel.PhraseScore != 2 {
		t.Errorf("PhraseScore = %v, want 2", rel.PhraseScore)
	}
	if len(rel.MatchedWords) != 2 || len(rel.MatchedPhrases) != 1 {
		t.Errorf("matched words/phrases = %v / %v", rel.MatchedWords, rel.MatchedPhrases)
	}
}

func TestScoreTotalClamped(t *testing.T) {
	s := NewScorer(ScorerConfig{BrandTerms: []string{"brand"}})
	set := trending.Set{
		Words: []trending.Term{
			{Text: "alpha", Count: 500},
			{Text: "bravo", Count: 500},
			{Text: "charlie", Count: 500},
		},
	}

	rel := s.Score(post.Post{Content: "brand alpha bravo charlie"}, set)
	if rel.Total != 10 {
		t.Errorf("Total = %v, want clamp at 10", rel.Total)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	s := NewScorer(ScorerConfig{BrandTerms: []string{"North Sails"}})

	rel := s.Score(post.Post{Content: "NORTH SAILS announcement"}, trending.Set{})
	if rel.BrandScore != 5 {
		t.Errorf("BrandScore = %v, want 5", rel.BrandScore)
	}
}

func TestScoreEvidenceListsAreBounded(t *testing.T) {
	s := NewScorer(ScorerConfig{})

	var words, phrases []trending.Term
	content := ""
	for _, w := range []string{
		"alfa", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliett", "kilo", "lima",
	} {
		words = append(words, trending.Term{Text: w, Count: 200})
		phrases = append(phrases, trending.Term{Text: w + " wins", Count: 100})
		content += w + " wins "
	}

	rel := s.Score(post.Post{Content: content}, trending.Set{Words: words, Phrases: phrases})

	if len(rel.MatchedWords) != 10 {
		t.Errorf("len(MatchedWords) = %d, want 10", len(rel.MatchedWords))
	}
	if len(rel.MatchedPhrases) != 5 {
		t.Errorf("len(MatchedPhrases) = %d, want 5", len(rel.MatchedPhrases))
	}
	// Scores still count every match past the evidence caps.
	if rel.WordScore != 24 {
		t.Errorf("WordScore = %v, want 24 (12 words at 2 points)", rel.WordScore)
	}
	if rel.PhraseScore != 24 {
		t.Errorf("PhraseScore = %v, want 24 (12 phrases at 2 points)", rel.PhraseScore)
	}
}
