package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"power100-experience-backend/internal/model"
)

// GetSessionsNow handles GET /api/contractors/{contractor_id}/sessions/now.
// Reads the rebuildable session-now view; staleness is bounded by refresh
// latency.
func (h *Handler) GetSessionsNow(c *gin.Context) {
	contractorID, err := strconv.ParseInt(c.Param("contractor_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid contractor ID"})
		return
	}

	rows, err := h.store.SessionsNow(c.Request.Context(), contractorID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}
	if rows == nil {
		rows = []model.SessionNowView{}
	}
	c.JSON(http.StatusOK, rows)
}

// GetSessionsUpcoming handles GET /api/contractors/{contractor_id}/sessions/upcoming.
func (h *Handler) GetSessionsUpcoming(c *gin.Context) {
	contractorID, err := strconv.ParseInt(c.Param("contractor_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid contractor ID"})
		return
	}

	rows, err := h.store.SessionsNext(c.Request.Context(), contractorID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sessions"})
		return
	}
	if rows == nil {
		rows = []model.SessionNextView{}
	}
	c.JSON(http.StatusOK, rows)
}
