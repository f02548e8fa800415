package recommendations

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"kri-backend/internal/shared/server/respond"
)

// Handler accepts externally submitted recommendation batches.
type Handler struct {
	Repo Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches recommendation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/recommendations", h.postRecommendations)
}

// postRecommendations validates a single object or an array of candidates.
// External batches are strict: any invalid item rejects the whole request and
// nothing is inserted.
func (h *Handler) postRecommendations(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read request body", nil)
		return
	}

	candidates, err := decodeCandidates(body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "body must be a recommendation object or array", nil)
		return
	}
	if len(candidates) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "empty batch", nil)
		return
	}

	validated := make([]Recommendation, 0, len(candidates))
	for i, candidate := range candidates {
		if violation := Validate(candidate); violation != nil {
			respond.Error(c, http.StatusBadRequest, "validation_failed", "recommendation batch rejected", gin.H{
				"index":  i,
				"issues": violation.Issues,
			})
			return
		}
		validated = append(validated, Normalize(candidate, ""))
	}

	inserted, err := h.Repo.InsertBatch(c.Request.Context(), validated)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to insert recommendations", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{"inserted": inserted})
}

func decodeCandidates(body []byte) ([]Candidate, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Candidate
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var single Candidate
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []Candidate{single}, nil
}
