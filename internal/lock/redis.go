package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLocker holds locks in redis so every API instance sees them.
type RedisLocker struct {
	client redis.Cmdable
	token  func() string
}

func NewRedisLocker(client redis.Cmdable) *RedisLocker {
	return &RedisLocker{client: client, token: randomToken}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := l.token()

	err := retry(ctx, ttl, func() (bool, error) {
		return l.client.SetNX(ctx, key, token, ttl).Result()
	})
	if err != nil {
		return nil, err
	}
	return l.releaser(key, token), nil
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := l.token()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAcquired
	}
	return l.releaser(key, token), nil
}

func (l *RedisLocker) releaser(key, token string) func() {
	return func() {
		// the request context may already be done
		if err := l.client.Eval(context.Background(), releaseScript, []string{key}, token).Err(); err != nil {
			log.Printf("lock_release_failed key=%s error=%v", key, err)
		}
	}
}

func randomToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
