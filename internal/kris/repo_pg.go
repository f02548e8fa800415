package kris

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const dateLayout = "2006-01-02"

// LatestAsOfDate returns the newest observation date in the feed.
func (r *PGRepo) LatestAsOfDate(ctx context.Context) (time.Time, bool, error) {
	const query = `SELECT MAX(observed_at) FROM kri_rows`

	var latest sql.NullTime
	if err := r.DB.QueryRowContext(ctx, query).Scan(&latest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time, true, nil
}

// BreachWindow returns the breached/warning window ordered by severity then recency.
func (r *PGRepo) BreachWindow(ctx context.Context, months int) ([]Row, error) {
	if months <= 0 {
		months = 2
	}

	const query = `
WITH maxd AS (
	SELECT MAX(observed_at) AS max_date FROM kri_rows
)
SELECT
	t.related_entity_id,
	t.metric_name,
	COALESCE(t.metric_value, 0),
	t.observed_at,
	COALESCE(t.kri_standard, ''),
	t.risk_type,
	COALESCE(t.risk_weight, 0),
	COALESCE(t.impact_level, 0),
	COALESCE(t.likelihood_bin, 0),
	COALESCE(t.probability_level, ''),
	t.warning_limit,
	COALESCE(t.warning_limit_operator, ''),
	t.escalation_limit,
	COALESCE(t.escalation_limit_operator, ''),
	t.threshold_limit,
	COALESCE(t.threshold_operator, ''),
	COALESCE(t.exposure_score, 0),
	t.status_band,
	CASE
		WHEN t.status_band = 'Breached' THEN 2
		WHEN t.status_band = 'Warning'  THEN 1
		ELSE 0
	END AS breach_level
FROM kri_rows t
CROSS JOIN maxd
WHERE t.is_top
  AND t.breached_count > 0
  AND t.observed_at BETWEEN maxd.max_date - ($1 * INTERVAL '1 month') AND maxd.max_date
ORDER BY breach_level DESC, t.observed_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		var observedAt time.Time
		var warningLimit, escalationLimit, thresholdLimit sql.NullFloat64
		if err := rows.Scan(
			&row.RelatedEntityID,
			&row.MetricName,
			&row.MetricValue,
			&observedAt,
			&row.KRIStandard,
			&row.RiskType,
			&row.RiskWeight,
			&row.ImpactLevel,
			&row.LikelihoodBin,
			&row.ProbabilityLevel,
			&warningLimit,
			&row.WarningLimitOperator,
			&escalationLimit,
			&row.EscalationLimitOperator,
			&thresholdLimit,
			&row.ThresholdOperator,
			&row.ExposureScore,
			&row.StatusBand,
			&row.BreachLevel,
		); err != nil {
			return nil, err
		}
		row.ObservedAt = observedAt.Format(dateLayout)
		if warningLimit.Valid {
			row.WarningLimit = &warningLimit.Float64
		}
		if escalationLimit.Valid {
			row.EscalationLimit = &escalationLimit.Float64
		}
		if thresholdLimit.Valid {
			row.ThresholdLimit = &thresholdLimit.Float64
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Snapshot returns the latest-date rows shaped for the narrative summary.
func (r *PGRepo) Snapshot(ctx context.Context) ([]SnapshotRow, error) {
	const query = `
WITH maxd AS (
	SELECT MAX(observed_at) AS max_date FROM kri_rows
)
SELECT
	t.related_entity_id,
	t.metric_name,
	COALESCE(t.metric_value, 0),
	t.risk_type,
	COALESCE(t.impact_level, 0),
	COALESCE(t.likelihood_bin, 0),
	COALESCE(t.exposure_score, 0),
	t.status_band,
	t.observed_at,
	CASE WHEN t.status_band = 'Breached' THEN 1 ELSE 0 END,
	CASE WHEN t.status_band = 'Warning'  THEN 1 ELSE 0 END,
	CASE WHEN t.impact_level = 3 AND t.likelihood_bin = 5 THEN 1 ELSE 0 END
FROM kri_rows t
CROSS JOIN maxd
WHERE t.observed_at = maxd.max_date
  AND t.is_top
ORDER BY t.risk_type, t.metric_name`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var row SnapshotRow
		var asOf time.Time
		if err := rows.Scan(
			&row.KRIID,
			&row.KRIName,
			&row.AdjustedCurrentMth,
			&row.RiskType,
			&row.ImpactLevel,
			&row.LikelihoodBin,
			&row.ExposureScore,
			&row.KRIStatus,
			&asOf,
			&row.IsBreached,
			&row.IsWarning,
			&row.HighImpactHighLikelihood,
		); err != nil {
			return nil, err
		}
		row.AsOfDate = asOf.Format(dateLayout)
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
