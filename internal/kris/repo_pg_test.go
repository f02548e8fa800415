package kris

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGLatestAsOfDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	want := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(observed_at) FROM kri_rows")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(want))

	repo := &PGRepo{DB: db}
	got, ok, err := repo.LatestAsOfDate(context.Background())
	if err != nil {
		t.Fatalf("LatestAsOfDate: %v", err)
	}
	if !ok || !got.Equal(want) {
		t.Fatalf("got %v ok=%v", got, ok)
	}
}

func TestPGLatestAsOfDateEmptyFeed(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT MAX(observed_at) FROM kri_rows")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	repo := &PGRepo{DB: db}
	_, ok, err := repo.LatestAsOfDate(context.Background())
	if err != nil {
		t.Fatalf("LatestAsOfDate: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false")
	}
}

func TestPGBreachWindowScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	columns := []string{
		"related_entity_id", "metric_name", "metric_value", "observed_at",
		"kri_standard", "risk_type", "risk_weight", "impact_level",
		"likelihood_bin", "probability_level", "warning_limit",
		"warning_limit_operator", "escalation_limit", "escalation_limit_operator",
		"threshold_limit", "threshold_operator", "exposure_score", "status_band",
		"breach_level",
	}
	observed := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM kri_rows").
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("KRI-001", "NPL Ratio", 7.2, observed, "BoG", "Credit Risk",
				0.3, 3, 5, "High", 5.0, "<=", 8.0, ">=", 6.0, "<=", 12.5, "Breached", 2).
			AddRow("KRI-002", "FX Open Position", 14.2, observed, "", "Market Risk",
				0.2, 2, 3, "Moderate", nil, "", nil, "", nil, "", 6.1, "Warning", 1))

	repo := &PGRepo{DB: db}
	rows, err := repo.BreachWindow(context.Background(), 2)
	if err != nil {
		t.Fatalf("BreachWindow: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].ObservedAt != "2025-05-31" {
		t.Fatalf("observedAt = %s, want ISO date string", rows[0].ObservedAt)
	}
	if rows[0].WarningLimit == nil || *rows[0].WarningLimit != 5.0 {
		t.Fatalf("warningLimit = %v", rows[0].WarningLimit)
	}
	if rows[1].WarningLimit != nil {
		t.Fatalf("expected nil warningLimit for KRI-002, got %v", *rows[1].WarningLimit)
	}
	if rows[0].BreachLevel != 2 {
		t.Fatalf("breachLevel = %d", rows[0].BreachLevel)
	}
}
