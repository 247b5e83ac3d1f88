// Package lock serialises booking writes per product.
package lock

import (
	"context"
	"errors"
	"strconv"
	"time"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires a named lock. The returned release func must be called once.
// Acquire waits up to ttl for a held lock; TryAcquire makes a single attempt
// and returns ErrNotAcquired if the lock is held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

func ProductKey(productID int64) string {
	return "lock:product:" + strconv.FormatInt(productID, 10)
}

// retry polls acquire until it succeeds, the context ends or ttl elapses.
func retry(ctx context.Context, ttl time.Duration, acquire func() (bool, error)) error {
	deadline := time.Now().Add(ttl)
	backoff := 10 * time.Millisecond

	for {
		ok, err := acquire()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}
