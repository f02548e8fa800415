package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// BatchPayload is the compact structured payload sent to the model in
// recommendation mode.
type BatchPayload struct {
	Source string `json:"source"`
	Window string `json:"window"`
	Rows   any    `json:"rows"`
}

// Client abstracts the completion provider.
//
// GenerateRecommendations is the structured mode: it returns a JSON array of
// candidate recommendation objects. Transport errors, non-success statuses
// and unparsable output are downgraded to an empty array with a nil error;
// callers treat an empty result as "nothing to insert". Exactly one candidate
// per input row is a soft contract enforced by the system prompt, not by the
// gateway; callers must reconcile any mismatch.
//
// Summarize is the freeform mode: it returns the raw text response. Failures
// propagate as errors since no summary exists to store.
type Client interface {
	GenerateRecommendations(ctx context.Context, payload BatchPayload) (json.RawMessage, error)
	Summarize(ctx context.Context, instruction, content string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured")

// PlaceholderClient is a stub implementation used when no provider is wired.
type PlaceholderClient struct{}

// GenerateRecommendations returns an empty candidate list.
func (PlaceholderClient) GenerateRecommendations(ctx context.Context, payload BatchPayload) (json.RawMessage, error) {
	_ = ctx
	_ = payload
	return json.RawMessage("[]"), nil
}

// Summarize returns ErrNotConfigured.
func (PlaceholderClient) Summarize(ctx context.Context, instruction, content string) (string, error) {
	_ = ctx
	_ = instruction
	_ = content
	return "", ErrNotConfigured
}
