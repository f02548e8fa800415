package recommendations

import (
	"strings"
	"time"

	"kri-backend/internal/shared/telemetry"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05"
)

// Normalize canonicalizes a validated candidate into a storage-ready
// Recommendation. It is pure and total: parse failures substitute safe
// defaults instead of failing the pipeline. fallbackObservedAt stands in for
// a missing observedAt; when both are absent or unparsable the observation
// date defaults to today and a warning is logged.
func Normalize(c Candidate, fallbackObservedAt string) Recommendation {
	rec := Recommendation{
		Source:              c.Source,
		RelatedEntityID:     c.RelatedEntityID,
		MetricName:          c.MetricName,
		RecommendationText:  c.RecommendationText,
		ActionType:          c.ActionType,
		RiskType:            c.RiskType,
		PostMitigationValue: c.PostMitigationValue,
	}
	if c.MetricValue != nil {
		rec.MetricValue = *c.MetricValue
	}
	if c.Confidence != nil {
		rec.Confidence = *c.Confidence
	}

	rec.ReferenceTimestamp = parseTimestamp(c.ReferenceTimestamp)
	rec.ObservedAt = parseObservedAt(c.ObservedAt, fallbackObservedAt)

	// Absent metadata becomes an explicit empty object before storage.
	if c.Metadata != nil {
		rec.Metadata = c.Metadata
	} else {
		rec.Metadata = map[string]any{}
	}

	return rec
}

// parseTimestamp parses an ISO-8601 timestamp; failure yields absent.
func parseTimestamp(raw string) *time.Time {
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "Z"))
	if raw == "" {
		return nil
	}
	for _, layout := range []string{timestampLayout, time.RFC3339, dateLayout} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}

// parseObservedAt parses a calendar date, trying a datetime parse first and a
// stricter date-only parse second; total failure defaults to today.
func parseObservedAt(raw, fallback string) time.Time {
	for _, candidate := range []string{raw, fallback} {
		candidate = strings.TrimSpace(strings.TrimSuffix(candidate, "Z"))
		if candidate == "" {
			continue
		}
		if ts, err := time.Parse(timestampLayout, candidate); err == nil {
			return truncateToDate(ts)
		}
		if ts, err := time.Parse(dateLayout, candidate); err == nil {
			return ts
		}
		telemetry.Warn("recommendations.normalize.bad_observed_at", map[string]any{
			"observed_at": candidate,
		})
	}
	return truncateToDate(time.Now().UTC())
}

func truncateToDate(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
