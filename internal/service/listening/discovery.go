// internal/service/listening/discovery.go

package listening

import (
	"regexp"
	"sort"
	"strings"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/trending"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	mentionPattern = regexp.MustCompile(`[@#][\p{L}\p{N}_]+`)
	symbolPattern  = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// DiscovererConfig contains configuration for trending term discovery.
type DiscovererConfig struct {
	// MinFrequency is the occurrence floor below which a term is noise.
	MinFrequency int

	// TopWords and TopPhrases bound the size of the reported set.
	TopWords   int
	TopPhrases int

	// MinWordLength is the minimum rune length for a single word.
	MinWordLength int
}

// DefaultDiscovererConfig returns the discovery defaults.
func DefaultDiscovererConfig() DiscovererConfig {
	return DiscovererConfig{
		MinFrequency:  100,
		TopWords:      50,
		TopPhrases:    30,
		MinWordLength: 4,
	}
}

// Discoverer extracts trending words and phrases from a batch of posts.
// Tokenization handles both Latin and Cyrillic text.
type Discoverer struct {
	config DiscovererConfig
}

// NewDiscoverer creates a discoverer.
func NewDiscoverer(config DiscovererConfig) *Discoverer {
	if config.TopWords <= 0 {
		config.TopWords = DefaultDiscovererConfig().TopWords
	}
	if config.TopPhrases <= 0 {
		config.TopPhrases = DefaultDiscovererConfig().TopPhrases
	}
	if config.MinWordLength <= 0 {
		config.MinWordLength = DefaultDiscovererConfig().MinWordLength
	}
	return &Discoverer{config: config}
}

// Discover counts words and adjacent phrases across all post content and
// returns the most frequent ones. Results are ordered by count, with
// first appearance breaking ties so repeated runs stay stable.
func (d *Discoverer) Discover(posts []post.Post) trending.Set {
	words := newTermCounter()
	phrases := newTermCounter()

	for _, p := range posts {
		tokens := d.tokenize(p.Content)

		// Only standalone words carry the length floor. Phrase windows
		// run over every token so that short connectives still form
		// phrases; the per-window floors filter the noise instead.
		for _, tok := range tokens {
			if len([]rune(tok)) >= d.config.MinWordLength {
				words.add(tok)
			}
		}

		for i := 0; i+1 < len(tokens); i++ {
			two := tokens[i] + " " + tokens[i+1]
			if len([]rune(two)) > 8 {
				phrases.add(two)
			}
			if i+2 < len(tokens) {
				three := two + " " + tokens[i+2]
				if len([]rune(three)) > 12 {
					phrases.add(three)
				}
			}
		}
	}

	return trending.Set{
		Words:   words.top(d.config.TopWords, d.config.MinFrequency),
		Phrases: phrases.top(d.config.TopPhrases, d.config.MinFrequency),
	}
}

// tokenize lowercases text and strips URLs, mentions, hashtags and
// punctuation. Every remaining token is returned, short ones included.
func (d *Discoverer) tokenize(text string) []string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")
	text = mentionPattern.ReplaceAllString(text, " ")
	text = symbolPattern.ReplaceAllString(text, " ")
	return strings.Fields(text)
}

// termCounter counts terms while remembering insertion order for
// deterministic tie-breaking.
type termCounter struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func newTermCounter() *termCounter {
	return &termCounter{
		counts: make(map[string]int),
		order:  make(map[string]int),
	}
}

func (c *termCounter) add(term string) {
	if _, seen := c.counts[term]; !seen {
		c.order[term] = c.next
		c.next++
	}
	c.counts[term]++
}

func (c *termCounter) top(n, minFrequency int) []trending.Term {
	terms := make([]trending.Term, 0, len(c.counts))
	for text, count := range c.counts {
		if count >= minFrequency {
			terms = append(terms, trending.Term{Text: text, Count: count})
		}
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return c.order[terms[i].Text] < c.order[terms[j].Text]
	})

	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}
