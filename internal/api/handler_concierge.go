package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"power100-experience-backend/internal/concierge"
)

// GetConciergeDiagram handles GET /api/concierge/diagram, returning Mermaid
// source derived from the live machine configuration.
func (h *Handler) GetConciergeDiagram(c *gin.Context) {
	c.String(http.StatusOK, h.concierge.Machine().Diagram())
}

// GetConciergeMetadata handles GET /api/concierge/metadata.
func (h *Handler) GetConciergeMetadata(c *gin.Context) {
	c.JSON(http.StatusOK, h.concierge.Machine().Metadata())
}

// GetConciergeStats handles GET /api/concierge/stats, aggregating concierge
// activity over the rolling 24h/1h windows.
func (h *Handler) GetConciergeStats(c *gin.Context) {
	stats, err := concierge.ComputeStats(c.Request.Context(), h.store, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
