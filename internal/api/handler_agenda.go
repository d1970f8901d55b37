package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"power100-experience-backend/internal/notification"
	"power100-experience-backend/internal/store"
)

type generateAgendaRequest struct {
	Accelerated bool `json:"accelerated"`
}

// GenerateAgenda handles POST /api/events/{event_id}/agenda. Generation is
// build-once: re-running for an event that already has messages scheduled is
// a conflict, not a silent overwrite.
func (h *Handler) GenerateAgenda(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("event_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req generateAgendaRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	summary, err := h.generator.Generate(c.Request.Context(), eventID, req.Accelerated)
	switch {
	case errors.Is(err, store.ErrEventNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	case errors.Is(err, store.ErrAgendaExists):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Agenda messages already generated for this event"})
		return
	case err != nil:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Agenda generation failed"})
		return
	}

	if h.alerts != nil {
		h.alerts.Dispatch(notification.Alert{
			EventID: eventID,
			Kind:    "agenda_generated",
			Message: fmt.Sprintf("Agenda generated: %d speaker alerts, %d PCR requests scheduled", summary.SpeakerAlerts, summary.PCRRequests),
		})
	}

	c.JSON(http.StatusCreated, summary)
}
