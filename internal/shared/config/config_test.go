package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	cfg := fromViper(viper.New())

	if cfg.Port != "8080" || cfg.Env != "dev" {
		t.Fatalf("unexpected defaults: port=%s env=%s", cfg.Port, cfg.Env)
	}
	if cfg.ObjectStoreType != "local" || cfg.LockBackend != "" {
		t.Fatalf("unexpected store/lock defaults: %s %s", cfg.ObjectStoreType, cfg.LockBackend)
	}
	if cfg.LockTTL != 30*time.Second {
		t.Fatalf("unexpected lock ttl %v", cfg.LockTTL)
	}
	if cfg.IngestConcurrency != 4 || cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("unexpected ingest defaults: %d %d", cfg.IngestConcurrency, cfg.MaxUploadBytes)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("dev should be dev-like")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOCK_BACKEND", "Redis")
	t.Setenv("LOCK_TTL", "5s")
	t.Setenv("INGEST_CONCURRENCY", "8")
	t.Setenv("DATABASE_URL", "postgres://localhost/lendnova")

	cfg := fromViper(viper.New())
	if cfg.Env != "production" || cfg.IsDevLike() {
		t.Fatalf("expected production env, got %s", cfg.Env)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %s", cfg.ObjectStoreType)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.KafkaBrokers)
	}
	if cfg.LockBackend != "redis" || cfg.LockTTL != 5*time.Second {
		t.Fatalf("unexpected lock config %s %v", cfg.LockBackend, cfg.LockTTL)
	}
	if cfg.IngestConcurrency != 8 {
		t.Fatalf("unexpected concurrency %d", cfg.IngestConcurrency)
	}
}

func TestWorkerSettings(t *testing.T) {
	cfg := fromViper(viper.New())
	if cfg.WorkerConcurrency != 4 || cfg.WorkerVisibilityTimeout != 5*time.Minute || cfg.WorkerShutdownTimeout != 30*time.Second {
		t.Fatalf("unexpected worker defaults %d %v %v", cfg.WorkerConcurrency, cfg.WorkerVisibilityTimeout, cfg.WorkerShutdownTimeout)
	}

	t.Setenv("WORKER_CONCURRENCY", "0")
	t.Setenv("WORKER_VISIBILITY_TIMEOUT", "90s")
	cfg = fromViper(viper.New())
	if cfg.WorkerConcurrency != 4 {
		t.Fatalf("non-positive concurrency should fall back, got %d", cfg.WorkerConcurrency)
	}
	if cfg.WorkerVisibilityTimeout != 90*time.Second {
		t.Fatalf("unexpected visibility %v", cfg.WorkerVisibilityTimeout)
	}
}

func TestLoadEnvFilesDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("LENDNOVA_TEST_A=file\nLENDNOVA_TEST_B=\"quoted\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("LENDNOVA_TEST_A", "env")
	t.Cleanup(func() { os.Unsetenv("LENDNOVA_TEST_B") })

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("LENDNOVA_TEST_A"); got != "env" {
		t.Fatalf("expected env to win, got %q", got)
	}
	if got := os.Getenv("LENDNOVA_TEST_B"); got != "quoted" {
		t.Fatalf("expected quoted value to load, got %q", got)
	}
}
