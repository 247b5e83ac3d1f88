package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductKey(t *testing.T) {
	assert.Equal(t, "lock:product:42", ProductKey(42))
}

func TestLocalLocker_Exclusive(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "k", time.Second)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxInside)
}

func TestLocalLocker_Timeout(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	defer release()

	_, err = l.Acquire(ctx, "k", 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := l.Acquire(ctx, "other", time.Second)
	require.NoError(t, err)
	other()
}

func TestLocalLocker_ReleaseIsIdempotent(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	release()
	release()

	again, err := l.Acquire(context.Background(), "k", 10*time.Millisecond)
	require.NoError(t, err)
	again()
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db)
	l.token = func() string { return "tok" }

	mock.ExpectSetNX("lock:product:7", "tok", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:product:7"}, "tok").SetVal(int64(1))

	release, err := l.Acquire(context.Background(), ProductKey(7), 5*time.Second)
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_RetriesUntilFree(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db)
	l.token = func() string { return "tok" }

	mock.ExpectSetNX("k", "tok", time.Second).SetVal(false)
	mock.ExpectSetNX("k", "tok", time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"k"}, "tok").SetVal(int64(1))

	release, err := l.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_ContextCancelled(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db)
	l.token = func() string { return "tok" }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mock.ExpectSetNX("k", "tok", time.Second).SetVal(false)

	_, err := l.Acquire(ctx, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalLocker_TryAcquireDoesNotWait(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	start := time.Now()
	_, err = l.TryAcquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	release()
	again, err := l.TryAcquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	again()
}

func TestRedisLocker_TryAcquire(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db)
	l.token = func() string { return "tok" }

	mock.ExpectSetNX("k", "tok", time.Minute).SetVal(false)
	_, err := l.TryAcquire(context.Background(), "k", time.Minute)
	assert.ErrorIs(t, err, ErrNotAcquired)

	mock.ExpectSetNX("k", "tok", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"k"}, "tok").SetVal(int64(1))
	release, err := l.TryAcquire(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}
