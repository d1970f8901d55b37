package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"power100-experience-backend/config"
	"power100-experience-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	limit := rate.Limit(cfg.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	rateLimiter := mw.RateLimiter(limit, 5, cfg.RequestIPHeader)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Orchestration
		api.POST("/events/:event_id/agenda", h.GenerateAgenda)
		api.POST("/sms/inbound", h.InboundSMS)

		// Session relevance views (eventually consistent reads)
		api.GET("/contractors/:contractor_id/sessions/now", caching, h.GetSessionsNow)
		api.GET("/contractors/:contractor_id/sessions/upcoming", caching, h.GetSessionsUpcoming)

		// State machine introspection and monitoring
		api.GET("/concierge/diagram", caching, h.GetConciergeDiagram)
		api.GET("/concierge/metadata", caching, h.GetConciergeMetadata)
		api.GET("/concierge/stats", h.GetConciergeStats)

		// Admin alert subscriptions
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
