package recommendations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// InsertBatch inserts all recommendations in one transaction.
func (r *PGRepo) InsertBatch(ctx context.Context, recs []Recommendation) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	const query = `
INSERT INTO recommendations (
	id, source, related_entity_id, metric_name, metric_value, recommendation_text,
	action_type, risk_type, confidence, reference_timestamp, observed_at, metadata,
	post_mitigation_value, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, rec := range recs {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		metadata, err := marshalMetadata(rec.Metadata)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, query,
			id,
			rec.Source,
			rec.RelatedEntityID,
			rec.MetricName,
			rec.MetricValue,
			rec.RecommendationText,
			rec.ActionType,
			rec.RiskType,
			rec.Confidence,
			rec.ReferenceTimestamp,
			rec.ObservedAt,
			metadata,
			rec.PostMitigationValue,
			now,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// LatestObservedAt returns the newest observation date covered by stored rows.
func (r *PGRepo) LatestObservedAt(ctx context.Context) (time.Time, bool, error) {
	const query = `SELECT MAX(observed_at) FROM recommendations`

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

// ListByObservedAt returns stored recommendations for one observation date.
func (r *PGRepo) ListByObservedAt(ctx context.Context, observedAt time.Time) ([]Recommendation, error) {
	const query = `
SELECT id, source, related_entity_id, metric_name, metric_value, recommendation_text,
       action_type, risk_type, confidence, reference_timestamp, observed_at, metadata,
       post_mitigation_value, created_at
FROM recommendations
WHERE observed_at = $1
ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctx, query, observedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recommendation
	for rows.Next() {
		var rec Recommendation
		var referenceTimestamp sql.NullTime
		var metadata sql.NullString
		var postMitigation sql.NullFloat64
		if err := rows.Scan(
			&rec.ID,
			&rec.Source,
			&rec.RelatedEntityID,
			&rec.MetricName,
			&rec.MetricValue,
			&rec.RecommendationText,
			&rec.ActionType,
			&rec.RiskType,
			&rec.Confidence,
			&referenceTimestamp,
			&rec.ObservedAt,
			&metadata,
			&postMitigation,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if referenceTimestamp.Valid {
			rec.ReferenceTimestamp = &referenceTimestamp.Time
		}
		rec.Metadata = map[string]any{}
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &rec.Metadata); err != nil {
				rec.Metadata = map[string]any{}
			}
		}
		if postMitigation.Valid {
			rec.PostMitigationValue = &postMitigation.Float64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(metadata)
}
