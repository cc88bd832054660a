package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	notifyKeyPrefix = "alipay_notify:"
	// DefaultNotifyDedupTTL covers the provider's redelivery window.
	DefaultNotifyDedupTTL = 24 * time.Hour
)

// RedisNotificationDeduper remembers processed notify ids in Redis.
type RedisNotificationDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisNotificationDeduper(client *redis.Client, ttl time.Duration) *RedisNotificationDeduper {
	if ttl <= 0 {
		ttl = DefaultNotifyDedupTTL
	}
	return &RedisNotificationDeduper{client: client, ttl: ttl}
}

func (d *RedisNotificationDeduper) IsProcessed(ctx context.Context, notifyID string) (bool, error) {
	exists, err := d.client.Exists(ctx, notifyKeyPrefix+notifyID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check notify id: %w", err)
	}
	return exists > 0, nil
}

func (d *RedisNotificationDeduper) MarkProcessed(ctx context.Context, notifyID string) error {
	if err := d.client.Set(ctx, notifyKeyPrefix+notifyID, "1", d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark notify id: %w", err)
	}
	return nil
}

// MemoryNotificationDeduper keeps processed ids in process memory until they expire.
type MemoryNotificationDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryNotificationDeduper(ttl time.Duration) *MemoryNotificationDeduper {
	if ttl <= 0 {
		ttl = DefaultNotifyDedupTTL
	}
	return &MemoryNotificationDeduper{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (d *MemoryNotificationDeduper) IsProcessed(_ context.Context, notifyID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiresAt, ok := d.seen[notifyID]
	if !ok {
		return false, nil
	}
	if d.now().After(expiresAt) {
		delete(d.seen, notifyID)
		return false, nil
	}
	return true, nil
}

func (d *MemoryNotificationDeduper) MarkProcessed(_ context.Context, notifyID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, expiresAt := range d.seen {
		if now.After(expiresAt) {
			delete(d.seen, id)
		}
	}
	d.seen[notifyID] = now.Add(d.ttl)
	return nil
}
