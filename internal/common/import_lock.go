package common

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another apply or rollback is in flight.
var ErrLockHeld = errors.New("another import operation is in progress")

// ImportLocker serializes apply and rollback across the whole service. A diff
// computed against one pre-mutation state is invalidated by a concurrent
// write, so only one mutating operation may hold the lock at a time.
type ImportLocker interface {
	// Acquire takes the advisory lock for at most ttl and returns a release
	// function. Returns ErrLockHeld when the lock is already taken.
	Acquire(ctx context.Context, holder string, ttl time.Duration) (func(), error)
}

const importLockKey = "catalogd:import:lock"

// RedisImportLock implements ImportLocker with SET NX and a TTL so a crashed
// holder cannot wedge the service.
type RedisImportLock struct {
	client *redis.Client
}

var _ ImportLocker = (*RedisImportLock)(nil)

func NewRedisImportLock(client *redis.Client) *RedisImportLock {
	return &RedisImportLock{client: client}
}

func (l *RedisImportLock) Acquire(ctx context.Context, holder string, ttl time.Duration) (func(), error) {
	ok, err := l.client.SetNX(ctx, importLockKey, holder, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// Only delete the lock if we still own it; a TTL expiry may have
		// handed it to another holder.
		current, err := l.client.Get(context.Background(), importLockKey).Result()
		if err != nil || current != holder {
			return
		}
		l.client.Del(context.Background(), importLockKey)
	}
	return release, nil
}

// MemoryImportLock is the single-process implementation used when Redis is
// not configured, and in tests.
type MemoryImportLock struct {
	mu     sync.Mutex
	holder string
	until  time.Time
}

var _ ImportLocker = (*MemoryImportLock)(nil)

func NewMemoryImportLock() *MemoryImportLock {
	return &MemoryImportLock{}
}

func (l *MemoryImportLock) Acquire(_ context.Context, holder string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if l.holder != "" && now.Before(l.until) {
		return nil, ErrLockHeld
	}

	l.holder = holder
	l.until = now.Add(ttl)

	release := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.holder == holder {
			l.holder = ""
		}
	}
	return release, nil
}
