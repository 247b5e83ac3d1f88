package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is an in-process Locker for single instance deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if err := retry(ctx, ttl, func() (bool, error) { return l.take(key), nil }); err != nil {
		return nil, err
	}
	return l.releaser(key), nil
}

func (l *LocalLocker) TryAcquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	if !l.take(key) {
		return nil, ErrNotAcquired
	}
	return l.releaser(key), nil
}

func (l *LocalLocker) take(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

func (l *LocalLocker) releaser(key string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}
}
