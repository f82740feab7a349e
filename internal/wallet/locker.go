package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/pkg/cache"
	"github.com/google/uuid"
)

// Locker serialises mutations per key. Wallets lock per customer, stock per variant.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type RedisLocker struct {
	cache    *cache.RedisClient
	ttl      time.Duration
	attempts int
	backoff  time.Duration
}

func NewRedisLocker(c *cache.RedisClient) *RedisLocker {
	return &RedisLocker{cache: c, ttl: 5 * time.Second, attempts: 3, backoff: 100 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	return l.LockFor(ctx, key, l.ttl)
}

// LockFor is Lock with a lease of ttl instead of the default, for holders that run long.
func (l *RedisLocker) LockFor(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	value := uuid.New().String()
	for i := 0; i < l.attempts; i++ {
		ok, err := l.cache.AcquireLock(ctx, key, value, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { _ = l.cache.ReleaseLock(context.Background(), key, value) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.backoff):
		}
	}
	return nil, ErrBusy
}

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: map[string]*sync.Mutex{}}
}

// LockFor ignores ttl: a process-local lock is held until unlock.
func (l *MemoryLocker) LockFor(ctx context.Context, key string, _ time.Duration) (func(), error) {
	return l.Lock(ctx, key)
}

func (l *MemoryLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}
