package recommendations

import (
	"context"
	"time"
)

// Repo defines persistence operations for recommendations.
type Repo interface {
	// InsertBatch inserts validated recommendations in one batch and returns
	// the number of rows written.
	InsertBatch(ctx context.Context, recs []Recommendation) (int, error)
	// LatestObservedAt returns the newest observation date already covered by
	// stored recommendations. ok is false when the table is empty.
	LatestObservedAt(ctx context.Context) (latest time.Time, ok bool, err error)
	// ListByObservedAt returns stored recommendations for one observation date.
	ListByObservedAt(ctx context.Context, observedAt time.Time) ([]Recommendation, error)
}
