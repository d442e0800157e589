package payment

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Deduplicator remembers which payment events were already handled.
type Deduplicator interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// RedisDeduplicator marks events with SETNX so redeliveries across instances are dropped.
type RedisDeduplicator struct {
	Client *redis.Client
	TTL    time.Duration
}

const dedupPrefix = "payment:event:"

func NewRedisDeduplicator(client *redis.Client) *RedisDeduplicator {
	return &RedisDeduplicator{Client: client, TTL: 24 * time.Hour}
}

func (d *RedisDeduplicator) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.Client.SetNX(ctx, dedupPrefix+eventID, time.Now().Unix(), d.TTL).Result()
}

func (d *RedisDeduplicator) Forget(ctx context.Context, eventID string) error {
	return d.Client.Del(ctx, dedupPrefix+eventID).Err()
}
