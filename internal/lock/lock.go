package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker provides mutual exclusion scoped to a key, typically an owner id.
// The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// NormalizeBackend maps a configured backend name to a known value,
// defaulting to memory.
func NormalizeBackend(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", BackendMemory:
		return BackendMemory, nil
	case BackendRedis:
		return BackendRedis, nil
	case BackendPostgres, "pg":
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unknown lock backend %q", raw)
	}
}
