package recommendations

import (
	"fmt"
	"strings"
)

// Validate checks a candidate against the recommendation schema. It returns a
// *SchemaViolation enumerating every offending field, or nil when the
// candidate is acceptable. A missing observedAt is not a violation: the
// normalizer substitutes the caller-supplied fallback or today's date.
// Validation is pure: identical for LLM-generated and externally POSTed input.
func Validate(c Candidate) *SchemaViolation {
	var issues []FieldIssue

	requireString := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			issues = append(issues, FieldIssue{Field: field, Issue: "required"})
		}
	}

	requireString("source", c.Source)
	requireString("relatedEntityId", c.RelatedEntityID)
	requireString("metricName", c.MetricName)
	requireString("recommendationText", c.RecommendationText)
	requireString("riskType", c.RiskType)

	if c.MetricValue == nil {
		issues = append(issues, FieldIssue{Field: "metricValue", Issue: "required"})
	}

	if c.ActionType == "" {
		issues = append(issues, FieldIssue{Field: "actionType", Issue: "required"})
	} else if !ValidActionType(c.ActionType) {
		issues = append(issues, FieldIssue{
			Field: "actionType",
			Issue: fmt.Sprintf("must be one of %s", strings.Join(ActionTypes, "|")),
		})
	}

	switch {
	case c.Confidence == nil:
		issues = append(issues, FieldIssue{Field: "confidence", Issue: "required"})
	case *c.Confidence < 0 || *c.Confidence > 1:
		issues = append(issues, FieldIssue{Field: "confidence", Issue: "must be between 0 and 1"})
	}

	if len(issues) > 0 {
		return &SchemaViolation{Issues: issues}
	}
	return nil
}
