package kris

import (
	"context"
	"sort"
	"sync"
	"time"
)

// SeedRow is one feed observation plus the upstream flags that scope the
// breach window. Used to seed the in-memory repo for dev and tests.
type SeedRow struct {
	Row           Row
	IsTop         bool
	BreachedCount int
}

// MemoryRepo implements Repo with in-memory observations.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows []SeedRow
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Seed appends observations to the feed.
func (r *MemoryRepo) Seed(rows ...SeedRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rows...)
}

// LatestAsOfDate returns the newest observation date in the feed.
func (r *MemoryRepo) LatestAsOfDate(ctx context.Context) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest time.Time
	var found bool
	for _, seed := range r.rows {
		observed, err := time.Parse(dateLayout, seed.Row.ObservedAt)
		if err != nil {
			continue
		}
		if !found || observed.After(latest) {
			latest = observed
			found = true
		}
	}
	return latest, found, nil
}

// BreachWindow returns top-flagged rows with breaches in the trailing window.
func (r *MemoryRepo) BreachWindow(ctx context.Context, months int) ([]Row, error) {
	if months <= 0 {
		months = 2
	}
	latest, ok, err := r.LatestAsOfDate(ctx)
	if err != nil || !ok {
		return nil, err
	}
	cutoff := latest.AddDate(0, -months, 0)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Row
	for _, seed := range r.rows {
		if !seed.IsTop || seed.BreachedCount <= 0 {
			continue
		}
		observed, err := time.Parse(dateLayout, seed.Row.ObservedAt)
		if err != nil {
			continue
		}
		if observed.Before(cutoff) || observed.After(latest) {
			continue
		}
		row := seed.Row
		row.BreachLevel = BreachLevel(row.StatusBand)
		out = append(out, row)
	}
	sortWindow(out)
	return out, nil
}

// Snapshot returns top-flagged rows at the latest as-of date.
func (r *MemoryRepo) Snapshot(ctx context.Context) ([]SnapshotRow, error) {
	latest, ok, err := r.LatestAsOfDate(ctx)
	if err != nil || !ok {
		return nil, err
	}
	latestDate := latest.Format(dateLayout)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []SnapshotRow
	for _, seed := range r.rows {
		if !seed.IsTop || seed.Row.ObservedAt != latestDate {
			continue
		}
		row := seed.Row
		snap := SnapshotRow{
			KRIID:              row.RelatedEntityID,
			KRIName:            row.MetricName,
			AdjustedCurrentMth: row.MetricValue,
			RiskType:           row.RiskType,
			ImpactLevel:        row.ImpactLevel,
			LikelihoodBin:      row.LikelihoodBin,
			ExposureScore:      row.ExposureScore,
			KRIStatus:          row.StatusBand,
			AsOfDate:           row.ObservedAt,
		}
		if row.StatusBand == StatusBreached {
			snap.IsBreached = 1
		}
		if row.StatusBand == StatusWarning {
			snap.IsWarning = 1
		}
		if row.ImpactLevel == 3 && row.LikelihoodBin == 5 {
			snap.HighImpactHighLikelihood = 1
		}
		out = append(out, snap)
	}
	sortSnapshot(out)
	return out, nil
}

func sortWindow(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].BreachLevel != rows[j].BreachLevel {
			return rows[i].BreachLevel > rows[j].BreachLevel
		}
		return rows[i].ObservedAt > rows[j].ObservedAt
	})
}

func sortSnapshot(rows []SnapshotRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].RiskType != rows[j].RiskType {
			return rows[i].RiskType < rows[j].RiskType
		}
		return rows[i].KRIName < rows[j].KRIName
	})
}

var _ Repo = (*MemoryRepo)(nil)
