package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lendnova-backend/internal/shared/telemetry"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a single-instance lock built on SET NX PX. The TTL bounds how long
// a crashed holder can block others.
type Redis struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
	Retry  time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{Client: client, Prefix: "lendnova:lock:", TTL: ttl, Retry: 50 * time.Millisecond}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := r.Prefix + key
	token := uuid.NewString()
	retry := r.Retry
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}

	for {
		ok, err := r.Client.SetNX(ctx, fullKey, token, r.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-time.After(retry):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.Client, []string{fullKey}, token).Err(); err != nil {
			telemetry.Error("lock.release_failed", map[string]any{
				"backend": BackendRedis,
				"key":     key,
				"error":   err.Error(),
			})
		}
	}, nil
}
