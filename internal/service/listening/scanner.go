// internal/service/listening/scanner.go

package listening

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/nats-io/nats.go"

	"brandpulse/internal/domain/post"
	"brandpulse/internal/domain/scan"
	"brandpulse/internal/domain/source"
	"brandpulse/internal/domain/trending"
)

// trendingPreviewSize caps the trending terms included in scan results.
// The full set still goes to the keyword sink and the backup.
const trendingPreviewSize = 10

// Feed fetches recent posts from one social platform.
type Feed interface {
	// Platform returns the platform name the feed serves.
	Platform() string

	// Fetch returns posts published by the source within the scan window.
	Fetch(ctx context.Context, src source.Source, opts scan.Options) ([]post.Post, error)
}

// Sink receives scan output for long-term storage.
type Sink interface {
	WritePosts(ctx context.Context, posts []post.ScoredPost) error
	WriteKeywords(ctx context.Context, platform string, set trending.Set) error
}

// Notifier reports completed backups to an operator channel.
type Notifier interface {
	NotifyBackup(ctx context.Context, summary scan.BackupSummary, avgScore float64) error
}

// EngagementConfig holds the per-platform engagement normalization.
type EngagementConfig struct {
	Divisor float64
	Floor   float64
}

// PacingConfig controls the pauses between source fetches on one
// platform. BatchSize groups sources between long pauses on platforms
// with strict quotas; SourcePause separates individual sources.
type PacingConfig struct {
	SourcePause time.Duration
	BatchSize   int
	BatchPause  time.Duration
}

// ScannerConfig contains configuration for the scan orchestrator.
type ScannerConfig struct {
	HoursBack        int
	MinScore         float64
	MinContentLength int

	ScanTimeout time.Duration
	EventsTopic string

	Pacing          map[string]PacingConfig
	PriorityWeights map[string]float64
	CategoryWeights map[string]float64
	Engagement      map[string]EngagementConfig
}

// Service orchestrates full scans: roster lookup, paced fetching,
// trending discovery, scoring, backup and persistence. It implements
// scan.Scanner.
type Service struct {
	feeds      map[string]Feed
	sources    source.Store
	backups    scan.BackupStore
	sink       Sink
	discoverer *Discoverer
	ranker     *Ranker
	eventBus   *nats.Conn
	notifier   Notifier
	config     ScannerConfig
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewService creates the scan orchestrator. eventBus and notifier may be
// nil, in which case events and notifications are skipped.
func NewService(
	feeds []Feed,
	sources source.Store,
	backups scan.BackupStore,
	sink Sink,
	discoverer *Discoverer,
	ranker *Ranker,
	eventBus *nats.Conn,
	notifier Notifier,
	config ScannerConfig,
) *Service {
	byName := make(map[string]Feed, len(feeds))
	for _, f := range feeds {
		byName[f.Platform()] = f
	}
	if config.ScanTimeout <= 0 {
		config.ScanTimeout = 10 * time.Minute
	}
	return &Service{
		feeds:      byName,
		sources:    sources,
		backups:    backups,
		sink:       sink,
		discoverer: discoverer,
		ranker:     ranker,
		eventBus:   eventBus,
		notifier:   notifier,
		config:     config,
		sleep:      pauseCtx,
	}
}

// ScanTelegram scans the Telegram source roster.
func (s *Service) ScanTelegram(ctx context.Context, opts scan.Options) (*scan.Result, error) {
	return s.scanPlatform(ctx, "telegram", opts)
}

// ScanVK scans the VK source roster.
func (s *Service) ScanVK(ctx context.Context, opts scan.Options) (*scan.Result, error) {
	return s.scanPlatform(ctx, "vk", opts)
}

// ScanTwitter scans the Twitter source roster.
func (s *Service) ScanTwitter(ctx context.Context, opts scan.Options) (*scan.Result, error) {
	return s.scanPlatform(ctx, "twitter", opts)
}

// ScanAll scans every configured platform sequentially and merges the
// results. A platform failure is tolerated and logged; an error is
// returned only when every platform fails.
func (s *Service) ScanAll(ctx context.Context, opts scan.Options) (*scan.Result, error) {
	merged := &scan.Result{
		Source:     "all",
		Timestamp:  time.Now().UTC(),
		Parameters: s.parameters(opts),
		Platforms:  make(map[string]scan.PlatformReport),
	}

	var lastErr error
	succeeded := 0

	for _, platform := range []string{"telegram", "vk", "twitter"} {
		if _, ok := s.feeds[platform]; !ok {
			continue
		}

		res, err := s.scanPlatform(ctx, platform, opts)
		if err != nil {
			log.Printf("scan: %s failed: %v", platform, err)
			lastErr = err
			continue
		}
		succeeded++

		merged.Platforms[platform] = scan.PlatformReport{
			PostCount: res.TotalPosts,
			Trending:  res.Trending,
		}
		merged.Posts = append(merged.Posts, res.Posts...)
		merged.TotalPosts += res.TotalPosts
		merged.Trending = mergeTrending(merged.Trending, res.Trending)
		if res.PersistError != "" {
			merged.PersistError = res.PersistError
		}
		if res.BackupError != "" {
			merged.BackupError = res.BackupError
		}
		if res.BackupID != "" {
			merged.BackupID = res.BackupID
		}
	}

	if succeeded == 0 && lastErr != nil {
		return nil, fmt.Errorf("all platforms failed: %w", lastErr)
	}

	sort.SliceStable(merged.Posts, func(i, j int) bool {
		return merged.Posts[i].FinalScore > merged.Posts[j].FinalScore
	})
	merged.Trending = merged.Trending.Top(trendingPreviewSize, trendingPreviewSize)
	merged.Summary = scan.NewSummary(merged.Posts)
	return merged, nil
}

func (s *Service) scanPlatform(ctx context.Context, platform string, opts scan.Options) (*scan.Result, error) {
	feed, ok := s.feeds[platform]
	if !ok {
		return nil, fmt.Errorf("no feed configured for platform %s", platform)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	opts = s.applyDefaults(opts)
	s.publishEvent("started", platform, map[string]interface{}{
		"hours_back": opts.HoursBack,
	})

	sources, err := s.sources.List(ctx, platform)
	if err != nil {
		s.publishEvent("failed", platform, map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("listing %s sources: %w", platform, err)
	}

	posts, err := s.collect(ctx, feed, sources, opts)
	if err != nil {
		s.publishEvent("failed", platform, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	set := s.discoverer.Discover(posts)

	if s.sink != nil && !set.IsEmpty() {
		if err := s.sink.WriteKeywords(ctx, platform, set); err != nil {
			log.Printf("scan: writing %s keywords: %v", platform, err)
		}
	}

	scored := s.ranker.Rank(posts, set, s.rankOptions(platform, opts))
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	s.writeBackStats(ctx, sources, scored)

	result := &scan.Result{
		Source:     platform,
		Timestamp:  time.Now().UTC(),
		Parameters: s.parameters(opts),
		TotalPosts: len(scored),
		Posts:      scored,
		Trending:   set.Top(trendingPreviewSize, trendingPreviewSize),
		Summary:    scan.NewSummary(scored),
	}

	// Backup before persistence, so a storage outage never loses a scan.
	label := fmt.Sprintf("%s_scan", platform)
	backupID, err := s.backups.Record(label, scored, set)
	if err != nil {
		result.BackupError = err.Error()
		log.Printf("scan: recording %s backup: %v", platform, err)
	} else {
		result.BackupID = backupID
		s.notifyBackup(ctx, backupID, label, scored)
	}

	if s.sink != nil && len(scored) > 0 {
		if err := s.sink.WritePosts(ctx, scored); err != nil {
			result.PersistError = err.Error()
			log.Printf("scan: persisting %s posts failed, backup %s retained: %v",
				platform, result.BackupID, err)
		}
	}

	s.publishEvent("completed", platform, map[string]interface{}{
		"total_posts": result.TotalPosts,
		"backup_id":   result.BackupID,
	})
	return result, nil
}

// collect fetches posts source by source, pacing requests so upstream
// quotas are respected. A single failing source is skipped, not fatal.
func (s *Service) collect(ctx context.Context, feed Feed, sources []source.Source, opts scan.Options) ([]post.Post, error) {
	pacing := s.config.Pacing[feed.Platform()]
	batchSize := pacing.BatchSize
	if opts.BatchSize > 0 {
		batchSize = opts.BatchSize
	}

	var posts []post.Post
	inBatch := 0

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan interrupted: %w", err)
		}
		if !src.Active {
			continue
		}

		fetched, err := feed.Fetch(ctx, src, opts)
		if err != nil {
			log.Printf("scan: fetching %s %q: %v", feed.Platform(), src.Title, err)
			continue
		}

		for _, p := range fetched {
			if p.ExternalID == "" {
				continue
			}
			if len([]rune(p.Content)) < s.config.MinContentLength {
				continue
			}
			posts = append(posts, p)
		}

		if i == len(sources)-1 {
			break
		}

		inBatch++
		if batchSize > 0 && inBatch >= batchSize && pacing.BatchPause > 0 {
			inBatch = 0
			if err := s.sleep(ctx, pacing.BatchPause); err != nil {
				return nil, fmt.Errorf("scan interrupted: %w", err)
			}
		} else if pacing.SourcePause > 0 {
			if err := s.sleep(ctx, pacing.SourcePause); err != nil {
				return nil, fmt.Errorf("scan interrupted: %w", err)
			}
		}
	}

	return posts, nil
}

// writeBackStats updates per-source scan statistics. Failures are logged
// and do not affect the scan result.
func (s *Service) writeBackStats(ctx context.Context, sources []source.Source, scored []post.ScoredPost) {
	counts := make(map[string]int)
	sums := make(map[string]float64)
	for _, p := range scored {
		counts[p.SourceID]++
		sums[p.SourceID] += p.FinalScore
	}

	now := time.Now().UTC()
	for _, src := range sources {
		n := counts[src.ID]
		if n == 0 {
			continue
		}
		stats := source.ScanStats{
			TotalPosts: n,
			AvgScore:   sums[src.ID] / float64(n),
			ScannedAt:  now,
		}
		if err := s.sources.UpdateScanStats(ctx, src.ID, stats); err != nil {
			log.Printf("scan: updating stats for source %s: %v", src.ID, err)
		}
	}
}

func (s *Service) notifyBackup(ctx context.Context, id, label string, scored []post.ScoredPost) {
	if s.notifier == nil {
		return
	}
	summary := scan.BackupSummary{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Label:     label,
		PostCount: len(scored),
	}
	avg := scan.NewSummary(scored).AvgScore
	if err := s.notifier.NotifyBackup(ctx, summary, avg); err != nil {
		log.Printf("scan: backup notification: %v", err)
	}
}

func (s *Service) publishEvent(kind, platform string, fields map[string]interface{}) {
	if s.eventBus == nil {
		return
	}
	payload := map[string]interface{}{
		"platform":  platform,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		payload[k] = v
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	topic := fmt.Sprintf("%s.%s", s.config.EventsTopic, kind)
	if err := s.eventBus.Publish(topic, data); err != nil {
		log.Printf("scan: publishing %s event: %v", topic, err)
	}
}

func (s *Service) applyDefaults(opts scan.Options) scan.Options {
	if opts.HoursBack <= 0 {
		opts.HoursBack = s.config.HoursBack
	}
	if opts.MinScore <= 0 {
		opts.MinScore = s.config.MinScore
	}
	return opts
}

func (s *Service) rankOptions(platform string, opts scan.Options) RankOptions {
	eng := s.config.Engagement[platform]
	return RankOptions{
		MinScore:          opts.MinScore,
		EngagementDivisor: eng.Divisor,
		MinEngagement:     eng.Floor,
		PriorityWeights:   s.config.PriorityWeights,
		CategoryWeights:   s.config.CategoryWeights,
	}
}

func (s *Service) parameters(opts scan.Options) scan.Options {
	return s.applyDefaults(opts)
}

// mergeTrending combines two trending sets, summing counts for terms
// that appear in both.
func mergeTrending(a, b trending.Set) trending.Set {
	return trending.Set{
		Words:   mergeTerms(a.Words, b.Words),
		Phrases: mergeTerms(a.Phrases, b.Phrases),
	}
}

func mergeTerms(a, b []trending.Term) []trending.Term {
	idx := make(map[string]int, len(a))
	out := make([]trending.Term, len(a))
	copy(out, a)
	for i, t := range out {
		idx[t.Text] = i
	}
	for _, t := range b {
		if i, ok := idx[t.Text]; ok {
			out[i].Count += t.Count
		} else {
			idx[t.Text] = len(out)
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func pauseCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
