package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"power100-experience-backend/internal/agenda"
	"power100-experience-backend/internal/concierge"
	"power100-experience-backend/internal/notification"
	"power100-experience-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	generator *agenda.Generator
	concierge *concierge.Router
	alerts    *notification.WorkerPool
	webpush   *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, generator *agenda.Generator, conciergeRouter *concierge.Router, alerts *notification.WorkerPool, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:     s,
		generator: generator,
		concierge: conciergeRouter,
		alerts:    alerts,
		webpush:   webpushOptions,
	}
}
