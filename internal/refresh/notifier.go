// Package refresh keeps the session view tables eventually consistent with
// the underlying schedule and roster tables. Writes publish the affected
// event id on a Redis channel; a long-running refresher subscribes and
// recomputes the views, backed by a periodic sweep that also handles
// time-boundary expiry and missed notifications.
package refresh

import (
	"context"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes change notifications on a well-known channel.
// It implements store.Notifier.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier creates a notifier publishing on the given channel.
func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

// EventChanged publishes the affected event id. Publish failures are logged
// and swallowed: the write already committed, and the refresher's periodic
// sweep recomputes views for any notification that never arrived.
func (n *RedisNotifier) EventChanged(ctx context.Context, eventID int64) {
	if err := n.rdb.Publish(ctx, n.channel, strconv.FormatInt(eventID, 10)).Err(); err != nil {
		log.Printf("Error publishing change notification for event %d: %v", eventID, err)
	}
}

// Ping verifies Redis connectivity. Useful for startup health checks.
func (n *RedisNotifier) Ping(ctx context.Context) error {
	return n.rdb.Ping(ctx).Err()
}
