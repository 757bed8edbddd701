package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tunearena/gateway/internal/api/handlers"
	apimiddleware "github.com/tunearena/gateway/internal/api/middleware"
	"github.com/tunearena/gateway/internal/arena"
	"github.com/tunearena/gateway/internal/battle"
	"github.com/tunearena/gateway/internal/config"
	"github.com/tunearena/gateway/internal/metrics"
	"github.com/tunearena/gateway/internal/registry"
)

// SetupRouter wires middleware and routes around the shared handler.
func SetupRouter(cfg *config.Config, catalog registry.Catalog, prebaked map[string]arena.DetailedPrompt, gen *battle.Generator, store *battle.Store, cw *metrics.Client) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cw))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Local bucket mode serves the stored blobs directly.
	if cfg.BucketAudio == "" || cfg.BucketMetadata == "" {
		router.Static("/static", cfg.DataDir)
	}

	h := handlers.New(cfg, catalog, prebaked, gen, store, cw)

	router.GET("/health_check", h.HealthCheck)
	router.GET("/systems", h.GetSystems)
	router.GET("/prebaked", h.GetPrebaked)
	router.POST("/generate_battle", h.GenerateBattle)
	router.GET("/battle/:uuid", h.GetBattle)
	router.POST("/record_vote", h.RecordVote)

	return router
}
