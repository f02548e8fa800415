package recommendations

import "testing"

func floatPtr(v float64) *float64 { return &v }

func validCandidate() Candidate {
	return Candidate{
		Source:             "KRI",
		RelatedEntityID:    "KRI-001",
		MetricName:         "NPL Ratio",
		MetricValue:        floatPtr(7.2),
		RecommendationText: "Tighten PFI credit review cadence.",
		ActionType:         ActionInvestigate,
		Confidence:         floatPtr(0.85),
		RiskType:           "Credit Risk",
		ObservedAt:         "2025-05-31",
	}
}

func TestValidateAccepts(t *testing.T) {
	if violation := Validate(validCandidate()); violation != nil {
		t.Fatalf("expected valid candidate, got %v", violation.Issues)
	}
}

func TestValidateMissingObservedAtIsAccepted(t *testing.T) {
	c := validCandidate()
	c.ObservedAt = ""
	if violation := Validate(c); violation != nil {
		t.Fatalf("missing observedAt should not be a violation, got %v", violation.Issues)
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	c := Candidate{ActionType: "escalate", Confidence: floatPtr(1.5)}
	violation := Validate(c)
	if violation == nil {
		t.Fatal("expected violation")
	}

	got := map[string]bool{}
	for _, issue := range violation.Issues {
		got[issue.Field] = true
	}
	for _, field := range []string{"source", "relatedEntityId", "metricName", "recommendationText", "riskType", "metricValue", "actionType", "confidence"} {
		if !got[field] {
			t.Errorf("expected issue for %s, issues: %v", field, violation.Issues)
		}
	}
}

func TestValidateActionTypeIsCaseSensitive(t *testing.T) {
	c := validCandidate()
	c.ActionType = "investigate"
	violation := Validate(c)
	if violation == nil {
		t.Fatal("expected violation for lowercase action type")
	}
	if len(violation.Issues) != 1 || violation.Issues[0].Field != "actionType" {
		t.Fatalf("expected single actionType issue, got %v", violation.Issues)
	}
}

func TestValidateConfidenceBounds(t *testing.T) {
	for _, v := range []float64{0, 0.5, 1} {
		c := validCandidate()
		c.Confidence = floatPtr(v)
		if violation := Validate(c); violation != nil {
			t.Errorf("confidence %v should be valid, got %v", v, violation.Issues)
		}
	}
	for _, v := range []float64{-0.01, 1.01} {
		c := validCandidate()
		c.Confidence = floatPtr(v)
		if Validate(c) == nil {
			t.Errorf("confidence %v should be rejected", v)
		}
	}
}
