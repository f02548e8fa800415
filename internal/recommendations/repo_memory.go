package recommendations

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo implements Repo with in-memory storage for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	recs []Recommendation
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// InsertBatch appends all recommendations.
func (r *MemoryRepo) InsertBatch(ctx context.Context, recs []Recommendation) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range recs {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		if rec.Metadata == nil {
			rec.Metadata = map[string]any{}
		}
		r.recs = append(r.recs, rec)
	}
	return len(recs), nil
}

// LatestObservedAt returns the newest observation date covered by stored rows.
func (r *MemoryRepo) LatestObservedAt(ctx context.Context) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest time.Time
	var found bool
	for _, rec := range r.recs {
		if !found || rec.ObservedAt.After(latest) {
			latest = rec.ObservedAt
			found = true
		}
	}
	return latest, found, nil
}

// ListByObservedAt returns stored recommendations for one observation date.
func (r *MemoryRepo) ListByObservedAt(ctx context.Context, observedAt time.Time) ([]Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Recommendation
	for _, rec := range r.recs {
		if rec.ObservedAt.Equal(observedAt) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// All returns every stored recommendation, insertion-ordered.
func (r *MemoryRepo) All() []Recommendation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Recommendation(nil), r.recs...)
}

var _ Repo = (*MemoryRepo)(nil)
