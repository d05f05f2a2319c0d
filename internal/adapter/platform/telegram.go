// internal/adapter/platform/telegram.go

package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/scan"
	"brandpulse/internal/domain/source"
	"brandpulse/internal/service/ratelimit"
)

// TelegramConfig contains configuration for the Telegram gateway client.
type TelegramConfig struct {
	// GatewayURL is the base URL of the MTProto gateway service that
	// exposes channel history over HTTP.
	GatewayURL string
	APIKey     string

	// PageLimit caps the number of messages requested per channel.
	PageLimit int

	Timeout time.Duration
}

// TelegramFeed fetches channel posts through the gateway. It implements
// listening.Feed.
type TelegramFeed struct {
	config TelegramConfig
	http   *http.Client
	caller *ratelimit.Caller
}

// NewTelegramFeed creates a Telegram feed.
func NewTelegramFeed(config TelegramConfig, limiter *ratelimit.Limiter) *TelegramFeed {
	if config.PageLimit <= 0 {
		config.PageLimit = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &TelegramFeed{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		caller: ratelimit.NewCaller(limiter, ratelimit.ListingCallerConfig()),
	}
}

// Platform returns "telegram".
func (f *TelegramFeed) Platform() string { return "telegram" }

type telegramMessage struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Date     int64  `json:"date"`
	Views    int    `json:"views"`
	Forwards int    `json:"forwards"`
	HasMedia bool   `json:"has_media"`
}

type telegramHistory struct {
	Messages []telegramMessage `json:"messages"`
}

// Fetch returns channel messages published within the scan window.
// Engagement weighs forwards ten times heavier than views.
func (f *TelegramFeed) Fetch(ctx context.Context, src source.Source, opts scan.Options) ([]post.Post, error) {
	channel := strings.TrimPrefix(src.ExternalID, "@")
	if channel == "" {
		return nil, fmt.Errorf("telegram source %s has no channel username", src.ID)
	}

	var history telegramHistory
	err := f.caller.Do(ctx, "messages.get", func() error {
		return f.getHistory(ctx, channel, opts.HoursBack, &history)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching channel %s: %w", channel, err)
	}

	since := time.Now().Add(-time.Duration(opts.HoursBack) * time.Hour)
	posts := make([]post.Post, 0, len(history.Messages))

	for _, msg := range history.Messages {
		published := time.Unix(msg.Date, 0).UTC()
		if published.Before(since) {
			continue
		}

		mediaType := "text"
		if msg.HasMedia {
			mediaType = "photo"
		}

		posts = append(posts, post.Post{
			Platform:       "telegram",
			SourceID:       src.ID,
			SourceTitle:    src.Title,
			SourceCategory: src.Category,
			SourcePriority: src.Priority,
			ExternalID:     strconv.FormatInt(msg.ID, 10),
			Content:        msg.Text,
			URL:            fmt.Sprintf("https://t.me/%s/%d", channel, msg.ID),
			MediaType:      mediaType,
			PublishedAt:    published,
			Engagement: post.Engagement{
				Views:    msg.Views,
				Forwards: msg.Forwards,
				Total:    float64(msg.Views + msg.Forwards*10),
			},
		})
	}

	return posts, nil
}

func (f *TelegramFeed) getHistory(ctx context.Context, channel string, hoursBack int, out *telegramHistory) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages", strings.TrimSuffix(f.config.GatewayURL, "/"), url.PathEscape(channel))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	q.Set("hours", strconv.Itoa(hoursBack))
	q.Set("limit", strconv.Itoa(f.config.PageLimit))
	req.URL.RawQuery = q.Encode()

	if f.config.APIKey != "" {
		req.Header.Set("X-Api-Key", f.config.APIKey)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
