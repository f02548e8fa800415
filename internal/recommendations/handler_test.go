package recommendations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(repo Repo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(repo).RegisterRoutes(r.Group("/"))
	return r
}

func TestPostRecommendationsSingleObject(t *testing.T) {
	repo := NewMemoryRepo()
	r := newTestRouter(repo)

	body := `{
		"source": "external",
		"relatedEntityId": "KRI-007",
		"metricName": "Liquidity Coverage Ratio",
		"metricValue": 92.4,
		"recommendationText": "Reinforce liquidity buffers.",
		"actionType": "EmailStakeholders",
		"confidence": 0.9,
		"riskType": "Liquidity Risk",
		"observedAt": "2025-05-31"
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Inserted int `json:"inserted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Inserted != 1 {
		t.Fatalf("inserted = %d, want 1", resp.Inserted)
	}
	if len(repo.All()) != 1 {
		t.Fatalf("stored = %d, want 1", len(repo.All()))
	}
}

func TestPostRecommendationsArray(t *testing.T) {
	repo := NewMemoryRepo()
	r := newTestRouter(repo)

	body := `[
		{"source":"external","relatedEntityId":"KRI-001","metricName":"NPL Ratio","metricValue":7.1,
		 "recommendationText":"Review PFI exposure.","actionType":"Investigate","confidence":0.8,
		 "riskType":"Credit Risk","observedAt":"2025-05-31"},
		{"source":"external","relatedEntityId":"KRI-002","metricName":"FX Open Position","metricValue":14.2,
		 "recommendationText":"Hedge open positions.","actionType":"NoAction","confidence":0.6,
		 "riskType":"Market Risk","observedAt":"2025-05-31"}
	]`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if len(repo.All()) != 2 {
		t.Fatalf("stored = %d, want 2", len(repo.All()))
	}
}

func TestPostRecommendationsRejectsWholeBatchOnOneInvalidItem(t *testing.T) {
	repo := NewMemoryRepo()
	r := newTestRouter(repo)

	body := `[
		{"source":"external","relatedEntityId":"KRI-001","metricName":"NPL Ratio","metricValue":7.1,
		 "recommendationText":"Review PFI exposure.","actionType":"Investigate","confidence":0.8,
		 "riskType":"Credit Risk","observedAt":"2025-05-31"},
		{"source":"external","relatedEntityId":"KRI-002","metricName":"FX Open Position","metricValue":14.2,
		 "recommendationText":"Hedge open positions.","actionType":"Escalate","confidence":0.6,
		 "riskType":"Market Risk","observedAt":"2025-05-31"}
	]`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Index int `json:"index"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	if resp.Error.Code != "validation_failed" {
		t.Fatalf("code = %s", resp.Error.Code)
	}
	if resp.Error.Details.Index != 1 {
		t.Fatalf("index = %d, want 1", resp.Error.Details.Index)
	}
	if len(repo.All()) != 0 {
		t.Fatalf("stored = %d, want 0 (atomic reject)", len(repo.All()))
	}
}

func TestPostRecommendationsMalformedBody(t *testing.T) {
	r := newTestRouter(NewMemoryRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader("not json"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPostRecommendationsEmptyArray(t *testing.T) {
	r := newTestRouter(NewMemoryRepo())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader("[]"))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
