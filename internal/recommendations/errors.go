package recommendations

import (
	"fmt"
	"strings"
)

// FieldIssue describes a single offending field.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// SchemaViolation reports every offending field of a candidate, not just the first.
type SchemaViolation struct {
	Issues []FieldIssue
}

func (e *SchemaViolation) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Issue))
	}
	return "schema violation: " + strings.Join(parts, "; ")
}
