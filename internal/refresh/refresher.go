package refresh

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"power100-experience-backend/config"
)

// ViewStore is the slice of the store the refresher needs.
type ViewStore interface {
	RebuildSessionViews(ctx context.Context, eventID int64, now time.Time) error
	ListRefreshableEventIDs(ctx context.Context, now time.Time) ([]int64, error)
}

// AlertFunc is called when a refresh keeps failing after all retries, so an
// operator can be paged. May be nil.
type AlertFunc func(eventID int64, reason string)

// Refresher is the long-running listener that recomputes session views.
// It consumes change notifications and additionally sweeps all refreshable
// events on a fixed interval: session-now membership changes as the clock
// passes session boundaries even when nothing is written, and Redis pub/sub
// is at-most-once delivery.
type Refresher struct {
	rdb     *redis.Client
	channel string
	store   ViewStore
	cfg     config.RefresherConfig
	alert   AlertFunc
	now     func() time.Time
}

// NewRefresher creates a refresher. alert may be nil.
func NewRefresher(rdb *redis.Client, channel string, store ViewStore, cfg config.RefresherConfig, alert AlertFunc) *Refresher {
	return &Refresher{
		rdb:     rdb,
		channel: channel,
		store:   store,
		cfg:     cfg,
		alert:   alert,
		now:     time.Now,
	}
}

// Run blocks until ctx is cancelled, processing notifications and periodic
// sweeps. Refresh failures are retried and logged, never fatal: stale view
// rows beat a crashed refresher.
func (r *Refresher) Run(ctx context.Context) {
	if !r.cfg.Enabled {
		log.Println("View refresher is disabled. Not starting.")
		return
	}
	log.Println("Starting view refresher...")

	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()
	msgs := pubsub.Channel()

	r.sweep(ctx)

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("View refresher shutting down.")
			return
		case msg, ok := <-msgs:
			if !ok {
				log.Println("Notification channel closed; relying on periodic sweep.")
				msgs = nil
				continue
			}
			eventID, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				log.Printf("Ignoring malformed change notification %q: %v", msg.Payload, err)
				continue
			}
			r.RefreshEvent(ctx, eventID)
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// RefreshEvent recomputes both views for one event with bounded retries.
// Duplicate and out-of-order notifications are harmless because the rebuild
// recomputes full state from current table contents.
func (r *Refresher) RefreshEvent(ctx context.Context, eventID int64) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.cfg.RetryBackoff):
			}
		}
		if lastErr = r.store.RebuildSessionViews(ctx, eventID, r.now()); lastErr == nil {
			return
		}
		log.Printf("View refresh for event %d failed (attempt %d/%d): %v", eventID, attempt+1, r.cfg.MaxRetries, lastErr)
	}

	log.Printf("Giving up on view refresh for event %d; views remain stale until next sweep: %v", eventID, lastErr)
	if r.alert != nil {
		r.alert(eventID, "view refresh failing: "+lastErr.Error())
	}
}

// sweep refreshes every event whose views are still live.
func (r *Refresher) sweep(ctx context.Context) {
	ids, err := r.store.ListRefreshableEventIDs(ctx, r.now())
	if err != nil {
		log.Printf("Sweep could not list refreshable events: %v", err)
		return
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		r.RefreshEvent(ctx, id)
	}
}
