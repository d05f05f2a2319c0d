package listening

import (
	"maps"
	"reflect"
	"strings"
	"testing"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

func TestTokenizeStripsNoise(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 1})

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "urls removed",
			input: "regatta results https://example.com/results today",
			want:  []string{"regatta", "results", "today"},
		},
		{
			name:  "mentions and hashtags removed",
			input: "congrats @skipper on #sailing victory",
			want:  []string{"congrats", "on", "victory"},
		},
		{
			name:  "punctuation removed",
			input: "wind, waves... победа!",
			want:  []string{"wind", "waves", "победа"},
		},
		{
			name:  "short tokens kept for phrase windows",
			input: "the sea was calm today",
			want:  []string{"the", "sea", "was", "calm", "today"},
		},
		{
			name:  "cyrillic preserved",
			input: "Новая коллекция одежды",
			want:  []string{"новая", "коллекция", "одежды"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.tokenize(tt.input)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDiscoverCountsAndRanks(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 2, TopWords: 10, TopPhrases: 10})

	posts := []post.Post{
		{Content: "sailing regatta season opens"},
		{Content: "sailing regatta draws crowds"},
		{Content: "sailing alone today"},
	}

	set := d.Discover(posts)

	if len(set.Words) == 0 || set.Words[0].Text != "sailing" {
		t.Fatalf("top word = %v, want sailing first", set.Words)
	}
	if set.Words[0].Count != 3 {
		t.Errorf("sailing count = %d, want 3", set.Words[0].Count)
	}

	// "regatta" appears twice and meets the floor; "season" only once.
	for _, w := range set.Words {
		if w.Text == "season" {
			t.Errorf("word below frequency floor survived: %v", w)
		}
	}

	found := false
	for _, ph := range set.Phrases {
		if ph.Text == "sailing regatta" {
			found = true
			if ph.Count != 2 {
				t.Errorf("phrase count = %d, want 2", ph.Count)
			}
		}
	}
	if !found {
		t.Errorf("expected phrase %q in %v", "sailing regatta", set.Phrases)
	}
}

func TestDiscoverPhraseLengthFloors(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 1, TopWords: 10, TopPhrases: 50})

	// "wave wind" is 9 runes and passes; a three-token phrase must
	// exceed 12 runes.
	set := d.Discover([]post.Post{{Content: "wave wind calm"}})

	for _, ph := range set.Phrases {
		n := len([]rune(ph.Text))
		if strings.Count(ph.Text, " ") == 1 && n <= 8 {
			t.Errorf("two-token phrase %q below length floor", ph.Text)
		}
		if strings.Count(ph.Text, " ") == 2 && n <= 12 {
			t.Errorf("three-token phrase %q below length floor", ph.Text)
		}
	}
}

func TestDiscoverTopCutoff(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 1, TopWords: 2, TopPhrases: 1})

	set := d.Discover([]post.Post{
		{Content: "alpha alpha alpha bravo bravo charlie"},
	})

	if len(set.Words) != 2 {
		t.Fatalf("len(words) = %d, want 2", len(set.Words))
	}
	if set.Words[0].Text != "alpha" || set.Words[1].Text != "bravo" {
		t.Errorf("words = %v, want [alpha bravo]", set.Words)
	}
}

func TestDiscoverTieBreakIsFirstSeen(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 1, TopWords: 10, TopPhrases: 10})

	set := d.Discover([]post.Post{{Content: "zulu apple zulu apple"}})

	if len(set.Words) < 2 || set.Words[0].Text != "zulu" {
		t.Errorf("equal counts should keep first-seen order, got %v", set.Words)
	}
}

func TestDiscoverShortTokensFormPhrasesNotWords(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 1, TopWords: 10, TopPhrases: 10})

	set := d.Discover([]post.Post{{Content: "sailing in monaco"}})

	for _, w := range set.Words {
		if w.Text == "in" {
			t.Errorf("short token counted as word: %v", set.Words)
		}
	}

	want := map[string]bool{"sailing in": false, "in monaco": false, "sailing in monaco": false}
	for _, ph := range set.Phrases {
		if _, ok := want[ph.Text]; ok {
			want[ph.Text] = true
		}
	}
	for text, found := range want {
		if !found {
			t.Errorf("expected phrase %q in %v", text, set.Phrases)
		}
	}
}

func TestDiscoverOrderIndependent(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 1, TopWords: 50, TopPhrases: 50})

	posts := []post.Post{
		{Content: "sailing regatta season opens"},
		{Content: "fashion week draws crowds"},
		{Content: "sailing season continues"},
	}
	permuted := []post.Post{posts[2], posts[0], posts[1]}

	a := d.Discover(posts)
	b := d.Discover(permuted)

	counts := func(terms []trending.Term) map[string]int {
		m := make(map[string]int, len(terms))
		for _, t := range terms {
			m[t.Text] = t.Count
		}
		return m
	}

	if !maps.Equal(counts(a.Words), counts(b.Words)) {
		t.Errorf("word counts differ across permutations: %v vs %v", a.Words, b.Words)
	}
	if !maps.Equal(counts(a.Phrases), counts(b.Phrases)) {
		t.Errorf("phrase counts differ across permutations: %v vs %v", a.Phrases, b.Phrases)
	}
}

func TestDiscoverIsIdempotent(t *testing.T) {
	d := NewDiscoverer(DiscovererConfig{MinFrequency: 1, TopWords: 50, TopPhrases: 50})

	posts := []post.Post{
		{Content: "sailing regatta season opens"},
		{Content: "sailing regatta draws crowds"},
	}

	a := d.Discover(posts)
	b := d.Discover(posts)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated discovery diverged:\n%+v\n%+v", a, b)
	}
}

func TestDiscoverEmptyInput(t *testing.T) {
	d := NewDiscoverer(DefaultDiscovererConfig())

	set := d.Discover(nil)
	if !set.IsEmpty() {
		t.Errorf("expected empty set, got %+v", set)
	}
}
