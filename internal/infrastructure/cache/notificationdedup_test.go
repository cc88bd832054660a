package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotificationDeduper(t *testing.T) {
	mr, client := setupTestRedis(t)
	d := NewRedisNotificationDeduper(client, time.Hour)
	ctx := context.Background()

	seen, err := d.IsProcessed(ctx, "n-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.MarkProcessed(ctx, "n-1"))

	seen, err = d.IsProcessed(ctx, "n-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Equal(t, time.Hour, mr.TTL("alipay_notify:n-1"))

	mr.FastForward(2 * time.Hour)
	seen, err = d.IsProcessed(ctx, "n-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisNotificationDeduper_RedisDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	d := NewRedisNotificationDeduper(client, time.Hour)
	mr.Close()

	_, err := d.IsProcessed(context.Background(), "n-1")
	assert.Error(t, err)
}

func TestMemoryNotificationDeduper_Expires(t *testing.T) {
	d := NewMemoryNotificationDeduper(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.MarkProcessed(ctx, "n-1"))
	seen, _ := d.IsProcessed(ctx, "n-1")
	assert.True(t, seen)

	now = now.Add(2 * time.Minute)
	seen, _ = d.IsProcessed(ctx, "n-1")
	assert.False(t, seen)
}
