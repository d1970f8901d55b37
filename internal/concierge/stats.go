package concierge

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"power100-experience-backend/internal/model"
)

// Keywords suggesting a contractor ran into trouble. A crude heuristic on
// purpose: it feeds an operational counter, not any routing decision.
var errorKeywords = []string{"error", "fail", "broken", "wrong", "not working"}

// Stats aggregates concierge activity over rolling windows for the
// monitoring endpoint.
type Stats struct {
	GeneratedAt        time.Time `json:"generated_at"`
	Messages24h        int       `json:"messages_24h"`
	MessagesLastHour   int       `json:"messages_last_hour"`
	InboundCount       int       `json:"inbound_count"`
	OutboundCount      int       `json:"outbound_count"`
	EventAgentPercent  float64   `json:"event_agent_percent"`
	StandardPercent    float64   `json:"standard_agent_percent"`
	ActiveContractors  int       `json:"active_contractors"`
	ErrorKeywordCount  int       `json:"error_keyword_count"`
}

// LogStore is the slice of the store the stats aggregation needs.
type LogStore interface {
	ConciergeLogsSince(ctx context.Context, since time.Time) ([]model.ConciergeLog, error)
}

// ComputeStats aggregates the last 24 hours of concierge logs.
func ComputeStats(ctx context.Context, store LogStore, now time.Time) (*Stats, error) {
	logs, err := store.ConciergeLogsSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate concierge stats: %w", err)
	}

	stats := &Stats{GeneratedAt: now}
	hourAgo := now.Add(-time.Hour)
	contractors := make(map[int64]struct{})
	routedEvent, routedStandard := 0, 0

	for _, entry := range logs {
		stats.Messages24h++
		if entry.CreatedAt.After(hourAgo) {
			stats.MessagesLastHour++
		}
		contractors[entry.ContractorID] = struct{}{}

		switch entry.Direction {
		case model.DirectionInbound:
			stats.InboundCount++
			if containsErrorKeyword(entry.Body) {
				stats.ErrorKeywordCount++
			}
		case model.DirectionOutbound:
			stats.OutboundCount++
			switch entry.Agent {
			case string(StateEventAgent):
				routedEvent++
			case string(StateStandardAgent):
				routedStandard++
			}
		}
	}

	stats.ActiveContractors = len(contractors)
	if routed := routedEvent + routedStandard; routed > 0 {
		stats.EventAgentPercent = roundPercent(float64(routedEvent) / float64(routed) * 100)
		stats.StandardPercent = roundPercent(float64(routedStandard) / float64(routed) * 100)
	}
	return stats, nil
}

func containsErrorKeyword(body string) bool {
	lower := strings.ToLower(body)
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func roundPercent(v float64) float64 {
	return math.Round(v*10) / 10
}
