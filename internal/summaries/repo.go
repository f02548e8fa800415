package summaries

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate indicates a summary already exists for the (type, date) pair.
var ErrDuplicate = errors.New("summary already exists for this type and date")

// Repo is the storage port for summaries.
type Repo interface {
	// Insert stores a new summary with is_emailed=false. Returns ErrDuplicate
	// when a summary of the same type and as-of date already exists.
	Insert(ctx context.Context, s Summary) (Summary, error)
	// MarkEmailed flips is_emailed for the (type, date) pair.
	MarkEmailed(ctx context.Context, summaryType string, asOfDate time.Time) error
	// LatestAsOfDate returns the newest as-of date stored for a summary type.
	LatestAsOfDate(ctx context.Context, summaryType string) (time.Time, bool, error)
}
