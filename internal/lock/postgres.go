package lock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lendnova-backend/internal/shared/telemetry"
)

// Postgres uses session-level advisory locks. Each held lock pins one
// connection from the pool until released.
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{DB: db}
}

func (p *Postgres) Lock(ctx context.Context, key string) (func(), error) {
	conn, err := p.DB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres lock %s: conn: %w", key, err)
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock(hashtext($1))`, key); err != nil {
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		}
		return nil, fmt.Errorf("postgres lock %s: %w", key, err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if _, err := conn.ExecContext(releaseCtx, `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			telemetry.Error("lock.release_failed", map[string]any{
				"backend": BackendPostgres,
				"key":     key,
				"error":   err.Error(),
			})
		}
		_ = conn.Close()
	}, nil
}
