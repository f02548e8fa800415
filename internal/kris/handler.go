package kris

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kri-backend/internal/shared/server/respond"
)

// Handler exposes the current KRI breach window over HTTP.
type Handler struct {
	Repo         Repo
	WindowMonths int
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo, windowMonths int) *Handler {
	return &Handler{Repo: repo, WindowMonths: windowMonths}
}

// RegisterRoutes attaches KRI routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/data/sql", h.getWindow)
}

func (h *Handler) getWindow(c *gin.Context) {
	rows, err := h.Repo.BreachWindow(c.Request.Context(), h.WindowMonths)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch KRI window", nil)
		return
	}
	if rows == nil {
		rows = []Row{}
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"meta": gin.H{
			"rows":   len(rows),
			"window": fmt.Sprintf("trailing_%d_months_from_max_as_of_date", h.WindowMonths),
		},
		"data": gin.H{
			"source": "KRI",
			"rows":   rows,
		},
	})
}
