package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"lendnova-backend/internal/shared/telemetry"
)

// ErrNoDatabaseURL is returned when Connect is called without a DSN.
var ErrNoDatabaseURL = errors.New("database url is empty")

// Profile names a process shape with its own pool sizing.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileLambda  Profile = "lambda"
	ProfileMigrate Profile = "migrate"
)

// Options sizes the pool and bounds the startup connectivity check.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	PingAttempts    int
	PingBackoff     time.Duration
}

var profiles = map[Profile]Options{
	// A Lambda sandbox serves one request at a time.
	ProfileLambda: {
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 30 * time.Second,
		ConnMaxLifetime: 15 * time.Minute,
		PingTimeout:     3 * time.Second,
		PingAttempts:    1,
	},
	ProfileServer: {
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		PingAttempts:    5,
		PingBackoff:     time.Second,
	},
	ProfileMigrate: {
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		PingAttempts:    5,
		PingBackoff:     time.Second,
	},
}

var (
	openDB      = sql.Open
	sleep       = sleepCtx
	singletonMu sync.Mutex
	singletonDB *sql.DB
)

// IsLambdaRuntime reports whether the process runs inside AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// DefaultOptions returns the pool sizing for p. Unknown profiles get the
// server sizing.
func DefaultOptions(p Profile) Options {
	if opts, ok := profiles[p]; ok {
		return opts
	}
	return profiles[ProfileServer]
}

// LoadOptions returns the profile defaults with DB_* environment overrides
// applied. Values that do not parse are logged and ignored.
func LoadOptions(p Profile) Options {
	v := viper.New()
	v.AutomaticEnv()
	opts := DefaultOptions(p)

	overrideInt(v, "DB_MAX_OPEN_CONNS", &opts.MaxOpenConns)
	overrideInt(v, "DB_MAX_IDLE_CONNS", &opts.MaxIdleConns)
	overrideInt(v, "DB_PING_ATTEMPTS", &opts.PingAttempts)
	overrideDuration(v, "DB_CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	overrideDuration(v, "DB_CONN_MAX_IDLE_TIME", &opts.ConnMaxIdleTime)
	overrideDuration(v, "DB_PING_TIMEOUT", &opts.PingTimeout)
	overrideDuration(v, "DB_PING_BACKOFF", &opts.PingBackoff)
	return opts
}

// Connect opens a pgx-backed pool and waits until Postgres answers a ping,
// retrying up to PingAttempts times.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	if err := pingWithRetry(ctx, db, opts); err != nil {
		db.Close()
		return nil, err
	}

	logPoolStats(db, "connect")
	return db, nil
}

// GetSingleton returns the process-wide pool, connecting on first use. A
// failed attempt is not cached so the next invocation tries again.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singletonDB != nil {
		return singletonDB, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	singletonDB = db
	telemetry.Info("db.singleton_init", map[string]any{"lambda": IsLambdaRuntime()})
	return singletonDB, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, opts Options) error {
	attempts := opts.PingAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		telemetry.Warn("db.ping_retry", map[string]any{"attempt": attempt, "error": err.Error()})
		if serr := sleep(ctx, opts.PingBackoff*time.Duration(attempt)); serr != nil {
			return fmt.Errorf("ping database: %w", serr)
		}
	}
	return fmt.Errorf("ping database after %d attempts: %w", attempts, err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 || opts.MaxIdleConns > opts.MaxOpenConns {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func logPoolStats(db *sql.DB, label string) {
	stats := db.Stats()
	telemetry.Info("db.pool", map[string]any{
		"label":    label,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
		"max_open": stats.MaxOpenConnections,
	})
}

func overrideInt(v *viper.Viper, key string, dst *int) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = n
}

func overrideDuration(v *viper.Viper, key string, dst *time.Duration) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = d
}
