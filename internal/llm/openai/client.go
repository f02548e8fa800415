package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"kri-backend/internal/llm"
	"kri-backend/internal/shared/telemetry"
)

// Temperature is kept near zero to bias toward reproducible output; the
// one-recommendation-per-row contract depends on consistent completions.
const temperature = 0.1

// Client implements llm.Client using OpenAI-compatible Chat Completions.
type Client struct {
	baseURL       string
	apiKey        string
	model         string
	batchClient   *http.Client
	summaryClient *http.Client
}

// NewClient constructs a new client. timeout covers batch recommendation
// calls; summaryTimeout covers the shorter narrative call.
func NewClient(baseURL, apiKey, model string, timeout, summaryTimeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("OPENAI_MODEL is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	if summaryTimeout <= 0 {
		summaryTimeout = 120 * time.Second
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		model:         model,
		batchClient:   &http.Client{Timeout: timeout},
		summaryClient: &http.Client{Timeout: summaryTimeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GenerateRecommendations sends the structured KRI payload and returns the
// parsed candidate array. All failures downgrade to an empty array.
func (c *Client) GenerateRecommendations(ctx context.Context, payload llm.BatchPayload) (json.RawMessage, error) {
	empty := json.RawMessage("[]")

	userContent, err := json.Marshal(payload)
	if err != nil {
		telemetry.Error("llm.generate.marshal_failed", map[string]any{"error": err.Error()})
		return empty, nil
	}

	content, err := c.complete(ctx, c.batchClient, []chatMessage{
		{Role: "system", Content: llm.RecommendationSystemPrompt},
		{Role: "user", Content: string(userContent)},
	})
	if err != nil {
		telemetry.Error("llm.generate.failed", map[string]any{"error": err.Error()})
		return empty, nil
	}

	candidates, ok := extractCandidateArray(content)
	if !ok {
		telemetry.Error("llm.generate.unparsable", map[string]any{"content_len": len(content)})
		return empty, nil
	}
	return candidates, nil
}

// Summarize sends a freeform instruction/content pair and returns the raw
// text response. Failures propagate.
func (c *Client) Summarize(ctx context.Context, instruction, content string) (string, error) {
	text, err := c.complete(ctx, c.summaryClient, []chatMessage{
		{Role: "system", Content: instruction},
		{Role: "user", Content: content},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, httpClient *http.Client, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("completion response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("completion response empty content")
	}
	logUsage(c.model, parsed.Usage)
	return content, nil
}

// extractCandidateArray pulls a JSON array out of the completion content.
// Accepts either a bare array or an object with a "recommendations" field.
func extractCandidateArray(content string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(content)
	switch {
	case strings.HasPrefix(trimmed, "["):
		if !json.Valid([]byte(trimmed)) {
			return nil, false
		}
		return json.RawMessage(trimmed), true
	case strings.HasPrefix(trimmed, "{"):
		var wrapper struct {
			Recommendations json.RawMessage `json:"recommendations"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapper); err != nil {
			return nil, false
		}
		inner := strings.TrimSpace(string(wrapper.Recommendations))
		if !strings.HasPrefix(inner, "[") || !json.Valid([]byte(inner)) {
			return nil, false
		}
		return json.RawMessage(inner), true
	default:
		return nil, false
	}
}

func logUsage(model string, usage *struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}) {
	if usage == nil {
		log.Printf("llm response model=%s", model)
		return
	}
	log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens)
}

var _ llm.Client = (*Client)(nil)
