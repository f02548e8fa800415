package summaries

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo implements Repo with in-memory storage for dev and tests.
type MemoryRepo struct {
	mu        sync.RWMutex
	summaries []Summary
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Insert stores a new summary, enforcing the one-per-(type, date) rule.
func (r *MemoryRepo) Insert(ctx context.Context, s Summary) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.summaries {
		if existing.SummaryType == s.SummaryType && existing.AsOfDate.Equal(s.AsOfDate) {
			return Summary{}, ErrDuplicate
		}
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.IsEmailed = false
	s.CreatedAt = time.Now().UTC()
	r.summaries = append(r.summaries, s)
	return s, nil
}

// MarkEmailed flips is_emailed for the (type, date) pair.
func (r *MemoryRepo) MarkEmailed(ctx context.Context, summaryType string, asOfDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.summaries {
		if r.summaries[i].SummaryType == summaryType && r.summaries[i].AsOfDate.Equal(asOfDate) {
			r.summaries[i].IsEmailed = true
		}
	}
	return nil
}

// LatestAsOfDate returns the newest as-of date stored for a summary type.
func (r *MemoryRepo) LatestAsOfDate(ctx context.Context, summaryType string) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest time.Time
	var found bool
	for _, s := range r.summaries {
		if s.SummaryType != summaryType {
			continue
		}
		if !found || s.AsOfDate.After(latest) {
			latest = s.AsOfDate
			found = true
		}
	}
	return latest, found, nil
}

// All returns every stored summary, insertion-ordered.
func (r *MemoryRepo) All() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Summary(nil), r.summaries...)
}

var _ Repo = (*MemoryRepo)(nil)
