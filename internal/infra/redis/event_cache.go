package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// EventDedup remembers provider webhook event IDs so replayed deliveries are
// acknowledged without re-processing.
type EventDedup struct {
	cli *redis.Client
	ttl time.Duration
}

func NewEventDedup(c *redClient, ttl time.Duration) *EventDedup {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EventDedup{cli: c.cli, ttl: ttl}
}

// Seen marks the event and reports whether it had already been recorded.
func (d *EventDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	ok, err := d.cli.SetNX(ctx, "webhook:event:"+eventID, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}
