// internal/adapter/platform/twitter.go

package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	twitter "github.com/g8rswimmer/go-twitter/v2"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/scan"
	"brandpulse/internal/domain/source"
	"brandpulse/internal/service/ratelimit"
)

// TwitterConfig contains configuration for the Twitter API v2 client.
// When consumer credentials are present the client signs requests with
// OAuth 1.0a user context; otherwise it falls back to the bearer token.
type TwitterConfig struct {
	BearerToken    string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string

	// MaxResults caps tweets per search page (Twitter allows 10-100).
	MaxResults int

	Timeout time.Duration
}

type bearerAuthorizer struct {
	token string
}

func (a bearerAuthorizer) Add(req *http.Request) {
	req.Header.Add("Authorization", "Bearer "+a.token)
}

// noopAuthorizer is used when the underlying transport already signs
// requests, as with OAuth 1.0a.
type noopAuthorizer struct{}

func (noopAuthorizer) Add(*http.Request) {}

// TwitterFeed fetches recent tweets for tracked accounts via the v2
// search API. Implements listening.Feed.
type TwitterFeed struct {
	client     *twitter.Client
	config     TwitterConfig
	caller     *ratelimit.Caller
}

// NewTwitterFeed creates a Twitter feed.
func NewTwitterFeed(config TwitterConfig, limiter *ratelimit.Limiter) *TwitterFeed {
	if config.MaxResults <= 0 {
		config.MaxResults = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	var client *twitter.Client
	if config.ConsumerKey != "" && config.AccessToken != "" {
		oaConfig := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret)
		token := oauth1.NewToken(config.AccessToken, config.AccessSecret)
		httpClient := oaConfig.Client(oauth1.NoContext, token)
		httpClient.Timeout = config.Timeout
		client = &twitter.Client{
			Authorizer: noopAuthorizer{},
			Client:     httpClient,
			Host:       "https://api.twitter.com",
		}
	} else {
		client = &twitter.Client{
			Authorizer: bearerAuthorizer{token: config.BearerToken},
			Client:     &http.Client{Timeout: config.Timeout},
			Host:       "https://api.twitter.com",
		}
	}

	return &TwitterFeed{
		client: client,
		config: config,
		caller: ratelimit.NewCaller(limiter, ratelimit.ListingCallerConfig()),
	}
}

// Platform returns "twitter".
func (f *TwitterFeed) Platform() string { return "twitter" }

// Fetch searches recent tweets from the tracked account. Retweets are
// excluded; engagement weighs retweets 2x against likes, replies and
// quotes.
func (f *TwitterFeed) Fetch(ctx context.Context, src source.Source, opts scan.Options) ([]post.Post, error) {
	handle := strings.TrimPrefix(src.ExternalID, "@")
	if handle == "" {
		return nil, fmt.Errorf("twitter source %s has no account handle", src.ID)
	}

	query := fmt.Sprintf("from:%s -is:retweet", handle)
	searchOpts := twitter.TweetRecentSearchOpts{
		MaxResults: f.config.MaxResults,
		StartTime:  time.Now().Add(-time.Duration(opts.HoursBack) * time.Hour),
		TweetFields: []twitter.TweetField{
			twitter.TweetFieldCreatedAt,
			twitter.TweetFieldPublicMetrics,
		},
	}

	var rsp *twitter.TweetRecentSearchResponse
	err := f.caller.Do(ctx, "tweets.search", func() error {
		var searchErr error
		rsp, searchErr = f.client.TweetRecentSearch(ctx, query, searchOpts)
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("searching tweets for %s: %w", handle, err)
	}
	if rsp == nil || rsp.Raw == nil {
		return nil, nil
	}

	posts := make([]post.Post, 0, len(rsp.Raw.Tweets))
	for _, tw := range rsp.Raw.Tweets {
		if tw == nil {
			continue
		}

		published, parseErr := time.Parse(time.RFC3339, tw.CreatedAt)
		if parseErr != nil {
			published = time.Now().UTC()
		}

		var likes, retweets, replies, quotes int
		if tw.PublicMetrics != nil {
			likes = tw.PublicMetrics.Likes
			retweets = tw.PublicMetrics.Retweets
			replies = tw.PublicMetrics.Replies
			quotes = tw.PublicMetrics.Quotes
		}

		posts = append(posts, post.Post{
			Platform:       "twitter",
			SourceID:       src.ID,
			SourceTitle:    src.Title,
			SourceCategory: src.Category,
			SourcePriority: src.Priority,
			ExternalID:     tw.ID,
			Content:        tw.Text,
			URL:            fmt.Sprintf("https://twitter.com/%s/status/%s", handle, tw.ID),
			MediaType:      "text",
			PublishedAt:    published.UTC(),
			Engagement: post.Engagement{
				Likes:    likes,
				Reposts:  retweets,
				Comments: replies,
				Total:    float64(likes + retweets*2 + replies + quotes),
			},
		})
	}

	return posts, nil
}
