package database

import (
	"context"
	"time"

	"github.com/lysyi3m/kent-tracker/app/feed"
)

// StateRepository persists the seen set and the feed between runs. Loads
// never fail: missing or malformed files yield empty defaults.
type StateRepository interface {
	Lock(ctx context.Context) (func(), error)

	LoadState() State
	SaveState(state State) error

	LoadFeed() []feed.FeedItem
	SaveFeed(items []feed.FeedItem) error
}

// RunRepository keeps an optional history of runs and admitted items.
type RunRepository interface {
	RecordRun(ctx context.Context, run Run) error
	UpsertItems(ctx context.Context, items []feed.FeedItem, seenAt time.Time) error

	GetRecentRuns(ctx context.Context, limit int) ([]Run, error)
	GetItemStats(ctx context.Context) (*ItemStats, error)
}
