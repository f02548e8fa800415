package kris

// Status bands reported by the upstream KRI feed.
const (
	StatusSafe     = "Safe"
	StatusWarning  = "Warning"
	StatusBreached = "Breached"
)

// BreachLevel ranks a status band for ordering (Breached > Warning > Safe).
func BreachLevel(statusBand string) int {
	switch statusBand {
	case StatusBreached:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}

// Row is one KRI observation from the upstream feed, restricted to the
// breach/warning window. Dates are ISO calendar dates (YYYY-MM-DD) so the
// payload survives JSON round-trips to the LLM unchanged.
type Row struct {
	RelatedEntityID         string   `json:"relatedEntityId"`
	MetricName              string   `json:"metricName"`
	MetricValue             float64  `json:"metricValue"`
	ObservedAt              string   `json:"observedAt"`
	KRIStandard             string   `json:"kriStandard,omitempty"`
	RiskType                string   `json:"riskType"`
	RiskWeight              float64  `json:"riskW,omitempty"`
	ImpactLevel             int      `json:"impactLevel,omitempty"`
	LikelihoodBin           int      `json:"likelihoodBin,omitempty"`
	ProbabilityLevel        string   `json:"probabilityLevel,omitempty"`
	WarningLimit            *float64 `json:"warningLimit,omitempty"`
	WarningLimitOperator    string   `json:"warningLimitOperator,omitempty"`
	EscalationLimit         *float64 `json:"escalationLimit,omitempty"`
	EscalationLimitOperator string   `json:"escalationLimitOperator,omitempty"`
	ThresholdLimit          *float64 `json:"thresholdLimit,omitempty"`
	ThresholdOperator       string   `json:"thresholdOperator,omitempty"`
	ExposureScore           float64  `json:"exposureScore,omitempty"`
	StatusBand              string   `json:"statusBand"`
	BreachLevel             int      `json:"breachLevel"`
}

// SnapshotRow is one KRI observation at the latest as-of date, shaped for the
// narrative summary payload.
type SnapshotRow struct {
	KRIID                    string  `json:"kriId"`
	KRIName                  string  `json:"kriName"`
	AdjustedCurrentMth       float64 `json:"adjustedCurrentMth"`
	RiskType                 string  `json:"riskType"`
	ImpactLevel              int     `json:"impactBin"`
	LikelihoodBin            int     `json:"likelihoodBin"`
	ExposureScore            float64 `json:"exposureScore"`
	KRIStatus                string  `json:"kriStatus"`
	AsOfDate                 string  `json:"asOfDate"`
	IsBreached               int     `json:"isBreached"`
	IsWarning                int     `json:"isWarning"`
	HighImpactHighLikelihood int     `json:"highImpactHighLikelihood"`
}
