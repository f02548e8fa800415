package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kri-backend/internal/kris"
	"kri-backend/internal/pipeline"
	"kri-backend/internal/recommendations"
	"kri-backend/internal/shared/config"
	"kri-backend/internal/shared/metrics"
	"kri-backend/internal/shared/server/middleware"
	"kri-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up. Construction happens
// in bootstrap; the router only registers.
type RouterDeps struct {
	Config                 config.Config
	KRIHandler             *kris.Handler
	RecommendationsHandler *recommendations.Handler
	PipelineHandler        *pipeline.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/")
	deps.KRIHandler.RegisterRoutes(api)
	deps.RecommendationsHandler.RegisterRoutes(api)
	deps.PipelineHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
