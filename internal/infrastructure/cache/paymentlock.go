package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/f2fpay/internal/domain/payment"
	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

const (
	paymentLockKeyPrefix = "payment_lock:"
	// DefaultPaymentLockTTL bounds how long a crashed holder blocks refunds.
	DefaultPaymentLockTTL = 60 * time.Second
	lockReleaseTimeout    = 3 * time.Second
)

// releaseScript deletes the lock only when it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisPaymentLocker serialises refunds of one payment across instances with SET NX.
type RedisPaymentLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisPaymentLocker(client *redis.Client, ttl time.Duration, log logger.Interface) *RedisPaymentLocker {
	if ttl <= 0 {
		ttl = DefaultPaymentLockTTL
	}
	return &RedisPaymentLocker{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Format: payment_lock:{payment_id}
func (l *RedisPaymentLocker) buildKey(paymentID uint) string {
	return fmt.Sprintf("%s%d", paymentLockKeyPrefix, paymentID)
}

// Lock acquires the lock without waiting. It returns payment.ErrPaymentLocked when held elsewhere.
func (l *RedisPaymentLocker) Lock(ctx context.Context, paymentID uint) (func(), error) {
	key := l.buildKey(paymentID)
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire payment lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: payment %d", payment.ErrPaymentLocked, paymentID)
	}

	return func() {
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warnw("failed to release payment lock",
				"payment_id", paymentID,
				"error", err)
		}
	}, nil
}

// MemoryPaymentLocker is the single-process fallback used when Redis is disabled.
type MemoryPaymentLocker struct {
	mu     sync.Mutex
	locked map[uint]struct{}
}

func NewMemoryPaymentLocker() *MemoryPaymentLocker {
	return &MemoryPaymentLocker{locked: make(map[uint]struct{})}
}

func (l *MemoryPaymentLocker) Lock(_ context.Context, paymentID uint) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.locked[paymentID]; held {
		return nil, fmt.Errorf("%w: payment %d", payment.ErrPaymentLocked, paymentID)
	}
	l.locked[paymentID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.locked, paymentID)
			l.mu.Unlock()
		})
	}, nil
}
