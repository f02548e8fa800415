package summaries

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Insert stores a new summary. The unique constraint on (summary_type,
// as_of_date) backs the one-summary-per-period rule.
func (r *PGRepo) Insert(ctx context.Context, s Summary) (Summary, error) {
	const query = `
INSERT INTO summaries (id, summary_type, summary_text, as_of_date, is_emailed, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.IsEmailed = false
	s.CreatedAt = time.Now().UTC()

	if _, err := r.DB.ExecContext(ctx, query,
		s.ID, s.SummaryType, s.SummaryText, s.AsOfDate, s.IsEmailed, s.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return Summary{}, ErrDuplicate
		}
		return Summary{}, err
	}
	return s, nil
}

// MarkEmailed flips is_emailed for the (type, date) pair.
func (r *PGRepo) MarkEmailed(ctx context.Context, summaryType string, asOfDate time.Time) error {
	const query = `
UPDATE summaries SET is_emailed = TRUE
WHERE summary_type = $1 AND as_of_date = $2`

	_, err := r.DB.ExecContext(ctx, query, summaryType, asOfDate)
	return err
}

// LatestAsOfDate returns the newest as-of date stored for a summary type.
func (r *PGRepo) LatestAsOfDate(ctx context.Context, summaryType string) (time.Time, bool, error) {
	const query = `SELECT MAX(as_of_date) FROM summaries WHERE summary_type = $1`

	var latest sql.NullTime
	if err := r.DB.QueryRowContext(ctx, query, summaryType).Scan(&latest); err != nil {
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

// isUniqueViolation reports whether err is a Postgres unique violation
// (SQLSTATE 23505). Matched by message to stay driver-agnostic under
// database/sql.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

var _ Repo = (*PGRepo)(nil)
