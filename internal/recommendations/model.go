package recommendations

import "time"

// Action types a recommendation may carry. Exact, case-sensitive match.
const (
	ActionEmailStakeholders = "EmailStakeholders"
	ActionRaiseStock        = "RaiseStock"
	ActionSlackNotify       = "SlackNotify"
	ActionInvestigate       = "Investigate"
	ActionNoAction          = "NoAction"
)

// ActionTypes lists the allowed action types.
var ActionTypes = []string{
	ActionEmailStakeholders,
	ActionRaiseStock,
	ActionSlackNotify,
	ActionInvestigate,
	ActionNoAction,
}

// ValidActionType reports whether raw is one of the enumerated action types.
func ValidActionType(raw string) bool {
	for _, t := range ActionTypes {
		if raw == t {
			return true
		}
	}
	return false
}

// Recommendation is one mitigation suggestion tied to a KRI observation.
// Rows are immutable after insert.
type Recommendation struct {
	ID                  string         `json:"id,omitempty"`
	Source              string         `json:"source"`
	RelatedEntityID     string         `json:"relatedEntityId"`
	MetricName          string         `json:"metricName"`
	MetricValue         float64        `json:"metricValue"`
	RecommendationText  string         `json:"recommendationText"`
	ActionType          string         `json:"actionType"`
	RiskType            string         `json:"riskType"`
	Confidence          float64        `json:"confidence"`
	ReferenceTimestamp  *time.Time     `json:"referenceTimestamp,omitempty"`
	ObservedAt          time.Time      `json:"observedAt"`
	Metadata            map[string]any `json:"metadata"`
	PostMitigationValue *float64       `json:"postMitigationValue,omitempty"`
	CreatedAt           time.Time      `json:"createdAt,omitempty"`
}

// Candidate is a loosely-typed recommendation object as received from the
// LLM or an external POST, before validation and normalization.
type Candidate struct {
	Source              string         `json:"source"`
	RelatedEntityID     string         `json:"relatedEntityId"`
	MetricName          string         `json:"metricName"`
	MetricValue         *float64       `json:"metricValue"`
	RecommendationText  string         `json:"recommendationText"`
	ActionType          string         `json:"actionType"`
	Confidence          *float64       `json:"confidence"`
	ReferenceTimestamp  string         `json:"referenceTimestamp"`
	ObservedAt          string         `json:"observedAt"`
	RiskType            string         `json:"riskType"`
	Metadata            map[string]any `json:"metadata"`
	PostMitigationValue *float64       `json:"postMitigationValue"`
}
