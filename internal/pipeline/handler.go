package pipeline

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kri-backend/internal/shared/server/respond"
	"kri-backend/internal/summaries"
)

// Handler exposes manual pipeline triggers.
type Handler struct {
	Service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// RegisterRoutes attaches pipeline trigger routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/gpt/run", h.postRun)
	rg.POST("/gpt/summary", h.postSummary)
}

// postRun triggers one recommendation run.
func (h *Handler) postRun(c *gin.Context) {
	result, err := h.Service.RunRecommendations(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrRunInProgress):
			respond.Error(c, http.StatusConflict, "run_in_progress", "a pipeline run is already executing", nil)
		case errors.Is(err, ErrNoData):
			respond.Error(c, http.StatusConflict, "no_data", "kri feed has no observations", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "recommendation run failed", nil)
		}
		return
	}
	c.Set("asOfDate", result.AsOfDate)
	respond.JSON(c, http.StatusOK, result)
}

// postSummary triggers one summary run.
func (h *Handler) postSummary(c *gin.Context) {
	result, err := h.Service.RunSummary(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrRunInProgress):
			respond.Error(c, http.StatusConflict, "run_in_progress", "a pipeline run is already executing", nil)
		case errors.Is(err, ErrNoData):
			respond.Error(c, http.StatusConflict, "no_data", "kri feed has no observations", nil)
		case errors.Is(err, summaries.ErrDuplicate):
			respond.Error(c, http.StatusConflict, "summary_exists", "a summary already exists for this reporting date", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "summary run failed", nil)
		}
		return
	}
	asOfDate := result.Summary.AsOfDate.Format("2006-01-02")
	c.Set("asOfDate", asOfDate)
	respond.JSON(c, http.StatusOK, gin.H{
		"summary_saved": true,
		"emailed":       result.Emailed,
		"asOfDate":      asOfDate,
		"summary":       result.Summary,
	})
}
