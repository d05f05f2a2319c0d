package scan

import (
	"context"
)

// Scanner runs brand-intelligence scans over the monitored platforms.
type Scanner interface {
	// ScanTelegram scans the telegram channel roster.
	ScanTelegram(ctx context.Context, opts Options) (*Result, error)

	// ScanVK scans the vk community roster in batches.
	ScanVK(ctx context.Context, opts Options) (*Result, error)

	// ScanTwitter scans the twitter query roster.
	ScanTwitter(ctx context.Context, opts Options) (*Result, error)

	// ScanAll scans every platform and merges the results. A platform
	// that fails is reported and skipped; ScanAll errors only when no
	// platform produced a result.
	ScanAll(ctx context.Context, opts Options) (*Result, error)
}
