package kris

import (
	"context"
	"time"
)

// Repo reads KRI observations from the upstream feed. The feed is read-only
// from this service's perspective.
type Repo interface {
	// LatestAsOfDate returns the newest observation date in the feed.
	// ok is false when the feed is empty.
	LatestAsOfDate(ctx context.Context) (latest time.Time, ok bool, err error)
	// BreachWindow returns top-flagged rows with a non-zero breach count in
	// the trailing window ending at the latest as-of date, ordered by breach
	// severity then recency.
	BreachWindow(ctx context.Context, months int) ([]Row, error)
	// Snapshot returns top-flagged rows whose as-of date equals the latest
	// date in the feed, ordered by risk type then metric name.
	Snapshot(ctx context.Context) ([]SnapshotRow, error)
}
