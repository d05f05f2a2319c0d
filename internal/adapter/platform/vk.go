// internal/adapter/platform/vk.go

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

// VKConfig contains configuration for the VK API client.
type VKConfig struct {
	AccessToken string
	APIVersion  string
	BaseURL     string

	// PostCount is the number of wall posts requested per community.
	// VK caps this at 100.
	PostCount int

	Timeout time.Duration
}

// DefaultVKConfig returns the VK client defaults.
func DefaultVKConfig() VKConfig {
	return VKConfig{
		APIVersion: "5.131",
		BaseURL:    "https://api.vk.com/method",
		PostCount:  50,
		Timeout:    30 * time.Second,
	}
}

// VKFeed fetches community wall posts from the VK API. Metadata lookups
// and wall listings use separate retry policies but share one limiter,
// since VK counts them against the same quota. Implements listening.Feed.
type VKFeed struct {
	config     VKConfig
	http       *http.Client
	metaCaller *ratelimit.Caller
	listCaller *ratelimit.Caller
}

// NewVKFeed creates a VK feed.
func NewVKFeed(config VKConfig, limiter *ratelimit.Limiter) *VKFeed {
	def := DefaultVKConfig()
	if config.APIVersion == "" {
		config.APIVersion = def.APIVersion
	}
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.PostCount <= 0 {
		config.PostCount = def.PostCount
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	return &VKFeed{
		config:     config,
		http:       &http.Client{Timeout: config.Timeout},
		metaCaller: ratelimit.NewCaller(limiter, ratelimit.MetadataCallerConfig()),
		listCaller: ratelimit.NewCaller(limiter, ratelimit.ListingCallerConfig()),
	}
}

// Platform returns "vk".
func (f *VKFeed) Platform() string { return "vk" }

type vkError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *vkError) Error() string {
	switch e.Code {
	case 6, 29:
		return fmt.Sprintf("vk api %d: %s (too many requests)", e.Code, e.Message)
	case 5:
		return fmt.Sprintf("vk api %d: %s (unauthorized)", e.Code, e.Message)
	default:
		return fmt.Sprintf("vk api %d: %s", e.Code, e.Message)
	}
}

type vkCount struct {
	Count int `json:"count"`
}

type vkWallPost struct {
	ID          int64           `json:"id"`
	Date        int64           `json:"date"`
	Text        string          `json:"text"`
	Likes       vkCount         `json:"likes"`
	Comments    vkCount         `json:"comments"`
	Reposts     vkCount         `json:"reposts"`
	Views       vkCount         `json:"views"`
	Attachments json.RawMessage `json:"attachments"`
}

type vkGroup struct {
	Name         string `json:"name"`
	MembersCount int    `json:"members_count"`
}

// Fetch returns recent wall posts for the community. Engagement weighs
// comments 3x, reposts 5x and views 0.1x relative to likes.
func (f *VKFeed) Fetch(ctx context.Context, src source.Source, opts scan.Options) ([]post.Post, error) {
	communityID := strings.TrimPrefix(src.ExternalID, "-")
	if communityID == "" {
		return nil, fmt.Errorf("vk source %s has no community id", src.ID)
	}

	title := src.Title
	if info, err := f.groupInfo(ctx, communityID); err == nil && info.Name != "" {
		title = info.Name
	}

	items, err := f.wallPosts(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("fetching community %s: %w", communityID, err)
	}

	since := time.Now().Add(-time.Duration(opts.HoursBack) * time.Hour)
	posts := make([]post.Post, 0, len(items))

	for _, item := range items {
		published := time.Unix(item.Date, 0).UTC()
		if published.Before(since) {
			continue
		}

		mediaType := "text"
		if len(item.Attachments) > 0 && string(item.Attachments) != "null" {
			mediaType = "photo"
		}

		total := float64(item.Likes.Count) +
			float64(item.Comments.Count)*3 +
			float64(item.Reposts.Count)*5 +
			float64(item.Views.Count)*0.1

		posts = append(posts, post.Post{
			Platform:       "vk",
			SourceID:       src.ID,
			SourceTitle:    title,
			SourceCategory: src.Category,
			SourcePriority: src.Priority,
			ExternalID:     strconv.FormatInt(item.ID, 10),
			Content:        item.Text,
			URL:            fmt.Sprintf("https://vk.com/wall-%s_%d", communityID, item.ID),
			MediaType:      mediaType,
			PublishedAt:    published,
			Engagement: post.Engagement{
				Likes:    item.Likes.Count,
				Comments: item.Comments.Count,
				Reposts:  item.Reposts.Count,
				Views:    item.Views.Count,
				Total:    total,
			},
		})
	}

	return posts, nil
}

func (f *VKFeed) groupInfo(ctx context.Context, communityID string) (*vkGroup, error) {
	params := url.Values{}
	params.Set("group_ids", communityID)
	params.Set("fields", "members_count,description,activity")

	var groups []vkGroup
	err := f.metaCaller.Do(ctx, "groups.getById", func() error {
		return f.call(ctx, "groups.getById", params, &groups)
	})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("community %s not found", communityID)
	}
	return &groups[0], nil
}

func (f *VKFeed) wallPosts(ctx context.Context, communityID string) ([]vkWallPost, error) {
	count := f.config.PostCount
	if count > 100 {
		count = 100
	}

	params := url.Values{}
	params.Set("owner_id", "-"+communityID)
	params.Set("count", strconv.Itoa(count))
	params.Set("extended", "1")

	var wall struct {
		Items []vkWallPost `json:"items"`
	}
	err := f.listCaller.Do(ctx, "wall.get", func() error {
		return f.call(ctx, "wall.get", params, &wall)
	})
	if err != nil {
		return nil, err
	}
	return wall.Items, nil
}

// call performs one VK API method call and decodes the response
// envelope, surfacing VK-level errors as *vkError.
func (f *VKFeed) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	params.Set("access_token", f.config.AccessToken)
	params.Set("v", f.config.APIVersion)

	endpoint := fmt.Sprintf("%s/%s?%s", strings.TrimSuffix(f.config.BaseURL, "/"), method, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vk returned %d", resp.StatusCode)
	}

	var envelope struct {
		Response json.RawMessage `json:"response"`
		Error    *vkError        `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if len(envelope.Response) == 0 {
		return fmt.Errorf("%s: empty response", method)
	}

	return json.Unmarshal(envelope.Response, out)
}
