package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"power100-experience-backend/internal/store"
)

type inboundSMSRequest struct {
	Phone string `json:"phone" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// InboundSMS handles POST /api/sms/inbound, the webhook the SMS provider
// calls for every contractor reply. A known contractor always gets a routed,
// non-empty reply; the worst case is the standard agent answering without
// event context.
func (h *Handler) InboundSMS(c *gin.Context) {
	var req inboundSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contractor, err := h.store.ContractorByPhone(c.Request.Context(), req.Phone)
	if errors.Is(err, store.ErrContractorNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown contractor phone"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Contractor lookup failed"})
		return
	}

	reply, err := h.concierge.Route(c.Request.Context(), contractor, req.Body)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Routing failed"})
		return
	}

	c.JSON(http.StatusOK, reply)
}
