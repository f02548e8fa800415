package summaries

import "time"

// TypeKRI is the summary type produced by the monthly pipeline. Other types
// exist for dashboards that publish their own narratives.
const TypeKRI = "KRI"

// Summary is a stored narrative report for one reporting date.
type Summary struct {
	ID          string    `json:"id"`
	SummaryType string    `json:"summaryType"`
	SummaryText string    `json:"summaryText"`
	AsOfDate    time.Time `json:"asOfDate"`
	IsEmailed   bool      `json:"isEmailed"`
	CreatedAt   time.Time `json:"createdAt"`
}
