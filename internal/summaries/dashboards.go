package summaries

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// dashboardNames maps a summary type to the published dashboard name it
// links to in the email call-to-action.
var dashboardNames = map[string]string{
	"KRI":      "Key Risk Indicator Overview",
	"Finance":  "Financial Overview",
	"ESG":      "ESG Dashboard",
	"Treasury": "Treasury Performance Dashboard",
}

// DashboardRepo resolves the published dashboard address for a summary type.
type DashboardRepo interface {
	// PublishedAddress returns the dashboard name and URL for a summary type.
	// ok is false when no dashboard is published; that is not an error.
	PublishedAddress(ctx context.Context, summaryType string) (name, url string, ok bool, err error)
}

// PGDashboardRepo implements DashboardRepo using Postgres.
type PGDashboardRepo struct {
	DB *sql.DB
}

// PublishedAddress looks up the published address for the dashboard mapped to
// the summary type.
func (r *PGDashboardRepo) PublishedAddress(ctx context.Context, summaryType string) (string, string, bool, error) {
	name, known := dashboardNames[summaryType]
	if !known {
		return "", "", false, nil
	}

	const query = `SELECT published_address FROM published_dashboards WHERE dashboard_name = $1`

	var url string
	if err := r.DB.QueryRowContext(ctx, query, name).Scan(&url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return name, "", false, nil
		}
		return "", "", false, err
	}
	if url == "" {
		return name, "", false, nil
	}
	return name, url, true, nil
}

// MemoryDashboardRepo implements DashboardRepo with in-memory storage.
type MemoryDashboardRepo struct {
	mu        sync.RWMutex
	addresses map[string]string
}

// NewMemoryDashboardRepo constructs an empty in-memory dashboard repo.
func NewMemoryDashboardRepo() *MemoryDashboardRepo {
	return &MemoryDashboardRepo{addresses: map[string]string{}}
}

// Publish records an address under a dashboard name.
func (r *MemoryDashboardRepo) Publish(dashboardName, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addresses[dashboardName] = url
}

// PublishedAddress returns the published address for the dashboard mapped to
// the summary type.
func (r *MemoryDashboardRepo) PublishedAddress(ctx context.Context, summaryType string) (string, string, bool, error) {
	name, known := dashboardNames[summaryType]
	if !known {
		return "", "", false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	url, ok := r.addresses[name]
	if !ok || url == "" {
		return name, "", false, nil
	}
	return name, url, true, nil
}

var (
	_ DashboardRepo = (*PGDashboardRepo)(nil)
	_ DashboardRepo = (*MemoryDashboardRepo)(nil)
)
