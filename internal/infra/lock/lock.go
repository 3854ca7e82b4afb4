// Package lock provides the sweep lease that keeps overlapping sweep ticks from
// running at the same time, within one process or across instances.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAcquired is returned when the lease is held by someone else.
var ErrNotAcquired = errors.New("lock is held by another owner")

// ReleaseFunc gives the lease back. Releasing an expired or stolen lease is a no-op.
type ReleaseFunc func(ctx context.Context) error

// Locker hands out time-bounded leases on a key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// MemoryLocker is the single-instance Locker used when Redis is not configured.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]memoryLease
	seq    uint64
	now    func() time.Time
}

type memoryLease struct {
	token     uint64
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]memoryLease), now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, ok := l.leases[key]; ok && now.Before(held.expiresAt) {
		return nil, ErrNotAcquired
	}
	l.seq++
	token := l.seq
	l.leases[key] = memoryLease{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if held, ok := l.leases[key]; ok && held.token == token {
			delete(l.leases, key)
		}
		return nil
	}, nil
}
