package kris

import (
	"context"
	"testing"
)

func seedFeed() *MemoryRepo {
	repo := NewMemoryRepo()
	repo.Seed(
		SeedRow{
			Row: Row{
				RelatedEntityID: "KRI-001", MetricName: "NPL Ratio", MetricValue: 7.2,
				ObservedAt: "2025-05-31", RiskType: "Credit Risk", StatusBand: StatusBreached,
				ImpactLevel: 3, LikelihoodBin: 5,
			},
			IsTop: true, BreachedCount: 2,
		},
		SeedRow{
			Row: Row{
				RelatedEntityID: "KRI-002", MetricName: "FX Open Position", MetricValue: 14.2,
				ObservedAt: "2025-05-31", RiskType: "Market Risk", StatusBand: StatusWarning,
			},
			IsTop: true, BreachedCount: 1,
		},
		SeedRow{
			Row: Row{
				RelatedEntityID: "KRI-003", MetricName: "Staff Turnover", MetricValue: 3.0,
				ObservedAt: "2025-05-31", RiskType: "Operational Risk", StatusBand: StatusSafe,
			},
			IsTop: true, BreachedCount: 0,
		},
		SeedRow{
			Row: Row{
				RelatedEntityID: "KRI-004", MetricName: "Stale Breach", MetricValue: 1.0,
				ObservedAt: "2024-11-30", RiskType: "Credit Risk", StatusBand: StatusBreached,
			},
			IsTop: true, BreachedCount: 1,
		},
		SeedRow{
			Row: Row{
				RelatedEntityID: "KRI-005", MetricName: "Untracked Breach", MetricValue: 9.9,
				ObservedAt: "2025-05-31", RiskType: "Credit Risk", StatusBand: StatusBreached,
			},
			IsTop: false, BreachedCount: 3,
		},
	)
	return repo
}

func TestMemoryLatestAsOfDate(t *testing.T) {
	repo := seedFeed()
	latest, ok, err := repo.LatestAsOfDate(context.Background())
	if err != nil || !ok {
		t.Fatalf("LatestAsOfDate: ok=%v err=%v", ok, err)
	}
	if got := latest.Format("2006-01-02"); got != "2025-05-31" {
		t.Fatalf("latest = %s", got)
	}
}

func TestMemoryLatestAsOfDateEmptyFeed(t *testing.T) {
	repo := NewMemoryRepo()
	_, ok, err := repo.LatestAsOfDate(context.Background())
	if err != nil {
		t.Fatalf("LatestAsOfDate: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false")
	}
}

func TestMemoryBreachWindowFiltersAndOrders(t *testing.T) {
	repo := seedFeed()
	rows, err := repo.BreachWindow(context.Background(), 2)
	if err != nil {
		t.Fatalf("BreachWindow: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (safe, stale and non-top excluded): %+v", len(rows), rows)
	}
	if rows[0].RelatedEntityID != "KRI-001" {
		t.Fatalf("first row = %s, want breached KRI-001 first", rows[0].RelatedEntityID)
	}
	if rows[0].BreachLevel != 2 || rows[1].BreachLevel != 1 {
		t.Fatalf("breach levels = %d,%d", rows[0].BreachLevel, rows[1].BreachLevel)
	}
}

func TestMemorySnapshotShapesRows(t *testing.T) {
	repo := seedFeed()
	rows, err := repo.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	// KRI-004 is at an older date, KRI-005 is not top-flagged.
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3: %+v", len(rows), rows)
	}

	var breached *SnapshotRow
	for i := range rows {
		if rows[i].KRIID == "KRI-001" {
			breached = &rows[i]
		}
	}
	if breached == nil {
		t.Fatal("KRI-001 missing from snapshot")
	}
	if breached.IsBreached != 1 || breached.IsWarning != 0 {
		t.Fatalf("flags = breached:%d warning:%d", breached.IsBreached, breached.IsWarning)
	}
	if breached.HighImpactHighLikelihood != 1 {
		t.Fatalf("highImpactHighLikelihood = %d, want 1", breached.HighImpactHighLikelihood)
	}
	if breached.AsOfDate != "2025-05-31" {
		t.Fatalf("asOfDate = %s", breached.AsOfDate)
	}
}
