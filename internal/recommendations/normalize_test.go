package recommendations

import (
	"testing"
	"time"
)

func TestNormalizeParsesDates(t *testing.T) {
	c := validCandidate()
	c.ObservedAt = "2025-05-31"
	c.ReferenceTimestamp = "2025-06-02T09:30:00"

	rec := Normalize(c, "")
	if got := rec.ObservedAt.Format("2006-01-02"); got != "2025-05-31" {
		t.Fatalf("observedAt = %s, want 2025-05-31", got)
	}
	if rec.ReferenceTimestamp == nil {
		t.Fatal("expected reference timestamp")
	}
	if got := rec.ReferenceTimestamp.Format("2006-01-02T15:04:05"); got != "2025-06-02T09:30:00" {
		t.Fatalf("referenceTimestamp = %s", got)
	}
}

func TestNormalizeObservedAtDatetimeTruncates(t *testing.T) {
	c := validCandidate()
	c.ObservedAt = "2025-05-31T14:22:10"

	rec := Normalize(c, "")
	want := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	if !rec.ObservedAt.Equal(want) {
		t.Fatalf("observedAt = %v, want %v", rec.ObservedAt, want)
	}
}

func TestNormalizeObservedAtFallback(t *testing.T) {
	c := validCandidate()
	c.ObservedAt = ""

	rec := Normalize(c, "2025-04-30")
	if got := rec.ObservedAt.Format("2006-01-02"); got != "2025-04-30" {
		t.Fatalf("observedAt = %s, want fallback 2025-04-30", got)
	}
}

func TestNormalizeObservedAtDefaultsToToday(t *testing.T) {
	c := validCandidate()
	c.ObservedAt = "not-a-date"

	rec := Normalize(c, "also-bad")
	today := time.Now().UTC()
	want := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !rec.ObservedAt.Equal(want) {
		t.Fatalf("observedAt = %v, want today %v", rec.ObservedAt, want)
	}
}

func TestNormalizeBadReferenceTimestampDropped(t *testing.T) {
	c := validCandidate()
	c.ReferenceTimestamp = "yesterday"

	rec := Normalize(c, "")
	if rec.ReferenceTimestamp != nil {
		t.Fatalf("expected nil reference timestamp, got %v", rec.ReferenceTimestamp)
	}
}

func TestNormalizeNilMetadataBecomesEmpty(t *testing.T) {
	c := validCandidate()
	c.Metadata = nil

	rec := Normalize(c, "")
	if rec.Metadata == nil {
		t.Fatal("expected non-nil metadata")
	}
	if len(rec.Metadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", rec.Metadata)
	}
}

func TestNormalizeIsPure(t *testing.T) {
	c := validCandidate()
	first := Normalize(c, "")
	second := Normalize(c, "")
	if !first.ObservedAt.Equal(second.ObservedAt) || first.Confidence != second.Confidence {
		t.Fatal("normalize should be deterministic for the same input")
	}
}
