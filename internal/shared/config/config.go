package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"

	"lendnova-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	LogFormat       string
	CORSAllowOrigin []string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockBackend   string
	LockTTL       time.Duration

	KafkaBrokers         []string
	KafkaAssessmentTopic string
	SQSQueueURL          string

	WorkerConcurrency       int
	WorkerVisibilityTimeout time.Duration
	WorkerShutdownTimeout   time.Duration

	OCRBinary         string
	OCRLang           string
	KeywordsFile      string
	IngestConcurrency int
	MaxUploadBytes    int64

	JWTSecret string
}

var defaults = map[string]any{
	"PORT":                   "8080",
	"ENV":                    "dev",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "json",
	"CORS_ALLOW_ORIGINS":     "http://localhost:5173",
	"OBJECT_STORE":           "local",
	"LOCAL_STORE_DIR":        "./data",
	"REDIS_DB":               0,
	"LOCK_TTL":               "30s",
	"KAFKA_ASSESSMENT_TOPIC": "lendnova.assessments",
	"OCR_BINARY":             "tesseract",
	"OCR_LANG":               "eng",
	"INGEST_CONCURRENCY":     4,
	"MAX_UPLOAD_BYTES":       int64(10 << 20),

	"WORKER_CONCURRENCY":        4,
	"WORKER_VISIBILITY_TIMEOUT": "5m",
	"WORKER_SHUTDOWN_TIMEOUT":   "30s",
}

// Load reads configuration from .env files, an optional config.yaml, and the
// environment, in increasing order of precedence.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			telemetry.Warn("config.read_failed", map[string]any{"error": err.Error()})
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	env := normalizeEnv(v.GetString("ENV"))
	dbURL := v.GetString("DATABASE_URL")
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	concurrency := v.GetInt("INGEST_CONCURRENCY")
	if concurrency <= 0 {
		concurrency = 4
	}
	lockTTL := v.GetDuration("LOCK_TTL")
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}

	return Config{
		Port:                 v.GetString("PORT"),
		Env:                  env,
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		CORSAllowOrigin:      splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		ObjectStoreType:      normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:        v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:            v.GetString("AWS_REGION"),
		S3Bucket:             v.GetString("S3_BUCKET"),
		S3Prefix:             v.GetString("S3_PREFIX"),
		SSEKMSKeyID:          v.GetString("SSE_KMS_KEY_ID"),
		DatabaseURL:          dbURL,
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		LockBackend:          strings.ToLower(strings.TrimSpace(v.GetString("LOCK_BACKEND"))),
		LockTTL:              lockTTL,
		KafkaBrokers:         splitAndTrim(v.GetString("KAFKA_BROKERS")),
		KafkaAssessmentTopic: v.GetString("KAFKA_ASSESSMENT_TOPIC"),
		SQSQueueURL:          v.GetString("SQS_QUEUE_URL"),
		OCRBinary:            v.GetString("OCR_BINARY"),
		OCRLang:              v.GetString("OCR_LANG"),
		KeywordsFile:         v.GetString("KEYWORDS_FILE"),
		IngestConcurrency:    concurrency,
		MaxUploadBytes:       v.GetInt64("MAX_UPLOAD_BYTES"),
		JWTSecret:            v.GetString("JWT_SECRET"),

		WorkerConcurrency:       positiveInt(v.GetInt("WORKER_CONCURRENCY"), 4),
		WorkerVisibilityTimeout: positiveDuration(v.GetDuration("WORKER_VISIBILITY_TIMEOUT"), 5*time.Minute),
		WorkerShutdownTimeout:   positiveDuration(v.GetDuration("WORKER_SHUTDOWN_TIMEOUT"), 30*time.Second),
	}
}

// IsDevLike reports whether dev conveniences (memory repos, header auth) apply.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func positiveInt(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func positiveDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
