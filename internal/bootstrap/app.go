package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"lendnova-backend/internal/assessments"
	"lendnova-backend/internal/consent"
	"lendnova-backend/internal/documents"
	"lendnova-backend/internal/events"
	"lendnova-backend/internal/extract"
	"lendnova-backend/internal/lock"
	"lendnova-backend/internal/queue"
	"lendnova-backend/internal/scoring"
	"lendnova-backend/internal/services/health"
	"lendnova-backend/internal/shared/auth"
	"lendnova-backend/internal/shared/config"
	"lendnova-backend/internal/shared/server"
	"lendnova-backend/internal/shared/server/middleware"
	"lendnova-backend/internal/shared/storage/db"
	"lendnova-backend/internal/shared/storage/object"
	localstore "lendnova-backend/internal/shared/storage/object/local"
	s3store "lendnova-backend/internal/shared/storage/object/s3"
	"lendnova-backend/internal/shared/telemetry"
	"lendnova-backend/internal/validation"
)

// ErrProcessLocalLock is returned when the in-process lock is configured for
// an environment that runs more than one process.
var ErrProcessLocalLock = errors.New("in-process lock cannot serialize assessments across processes")

var newRedisClient = redis.NewClient

// App holds shared dependencies and the HTTP router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  object.ObjectStore
	Queue  queue.Client
	Locker lock.Locker
	Events events.Publisher
	Health *health.Service

	DocumentsService   *documents.Service
	AssessmentsService *assessments.Service
	ConsentService     *consent.Service

	DocumentsHandler   *documents.Handler
	AssessmentsHandler *assessments.Handler
	ConsentHandler     *consent.Handler

	closers []func() error
}

// Build prepares every dependency and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	app := &App{Config: cfg, Health: health.NewService()}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		app.DB = sqlDB
		// The Lambda pool is a process singleton reused across invocations.
		if !db.IsLambdaRuntime() {
			app.closers = append(app.closers, sqlDB.Close)
		}
		app.Health.Register("database", sqlDB.PingContext)
	}

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		app.Redis = newRedisClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		app.closers = append(app.closers, app.Redis.Close)
		app.Health.Register("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	fail := func(err error) (*App, error) {
		if cerr := app.Close(); cerr != nil {
			telemetry.Warn("bootstrap.close_failed", map[string]any{"error": cerr})
		}
		return nil, err
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		return fail(err)
	}
	if app.Queue, err = buildQueue(ctx, cfg); err != nil {
		return fail(err)
	}
	lockBackend, err := resolveLockBackend(cfg, app.DB)
	if err != nil {
		return fail(err)
	}
	if app.Locker, err = buildLocker(lockBackend, cfg, app.DB, app.Redis); err != nil {
		return fail(err)
	}
	app.Events = buildEvents(app, cfg)

	if err := buildServices(app); err != nil {
		return fail(err)
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return fail(err)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		Tokens:            tokens,
		Health:            app.Health,
		DocumentHandler:   app.DocumentsHandler,
		AssessmentHandler: app.AssessmentsHandler,
		ConsentHandler:    app.ConsentHandler,
		RateLimiter:       middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"database":     app.DB != nil,
		"redis":        app.Redis != nil,
		"queue":        app.Queue != nil,
		"lock_backend": lockBackend,
		"kafka":        len(cfg.KafkaBrokers) > 0,
	})
	return app, nil
}

// Close releases connections opened by Build, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() || cfg.Env == "test" {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.LoadOptions(db.ProfileLambda))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.LoadOptions(db.ProfileServer))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
}

// resolveLockBackend picks the postgres advisory lock when LOCK_BACKEND is
// unset and a database is configured. The in-process lock is refused outside
// dev and test, where workers run as separate processes.
func resolveLockBackend(cfg config.Config, sqlDB *sql.DB) (string, error) {
	raw := strings.TrimSpace(cfg.LockBackend)
	if raw == "" && sqlDB != nil {
		raw = lock.BackendPostgres
	}
	backend, err := lock.NormalizeBackend(raw)
	if err != nil {
		return "", err
	}
	if backend == lock.BackendMemory && !cfg.IsDevLike() && cfg.Env != "test" {
		return "", fmt.Errorf("%w: set LOCK_BACKEND to redis or postgres in %s", ErrProcessLocalLock, cfg.Env)
	}
	return backend, nil
}

func buildLocker(backend string, cfg config.Config, sqlDB *sql.DB, rdb *redis.Client) (lock.Locker, error) {
	switch backend {
	case lock.BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("LOCK_BACKEND=redis requires REDIS_ADDR")
		}
		return lock.NewRedis(rdb, cfg.LockTTL), nil
	case lock.BackendPostgres:
		if sqlDB == nil {
			return nil, fmt.Errorf("LOCK_BACKEND=postgres requires DATABASE_URL")
		}
		return lock.NewPostgres(sqlDB), nil
	default:
		return lock.NewMemory(), nil
	}
}

func buildEvents(app *App, cfg config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NopPublisher{}
	}
	pub := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAssessmentTopic)
	app.closers = append(app.closers, pub.Close)
	return pub
}

func buildValidator(cfg config.Config) (*validation.Validator, error) {
	table := validation.DefaultKeywordTable()
	if path := strings.TrimSpace(cfg.KeywordsFile); path != "" {
		loaded, err := validation.LoadKeywordTable(path)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	return validation.NewValidator(table), nil
}

func buildServices(app *App) error {
	var (
		docRepo        documents.Repo
		assessmentRepo assessments.Repo
		consentRepo    consent.Repo
	)
	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		assessmentRepo = &assessments.PGRepo{DB: app.DB}
		consentRepo = &consent.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		assessmentRepo = assessments.NewMemoryRepo()
		consentRepo = consent.NewMemoryRepo()
	}

	validator, err := buildValidator(app.Config)
	if err != nil {
		return err
	}

	docSvc := &documents.Service{
		Store:           app.Store,
		Repo:            docRepo,
		Extractor:       extract.New(extract.NewTesseractOCR(app.Config.OCRBinary, app.Config.OCRLang)),
		Validator:       validator,
		StorageProvider: app.Config.ObjectStoreType,
		Concurrency:     app.Config.IngestConcurrency,
	}
	consentSvc := &consent.Service{Repo: consentRepo}
	assessmentSvc := &assessments.Service{
		Docs:   docSvc,
		Repo:   assessmentRepo,
		Locker: app.Locker,
		Policy: scoring.DefaultPolicy(),
		Events: app.Events,
		Queue:  app.Queue,
	}

	app.DocumentsService = docSvc
	app.ConsentService = consentSvc
	app.AssessmentsService = assessmentSvc
	app.DocumentsHandler = documents.NewHandler(docSvc, app.Config.MaxUploadBytes)
	app.ConsentHandler = consent.NewHandler(consentSvc)
	app.AssessmentsHandler = assessments.NewHandler(assessmentSvc, consent.RequireConsent(consentSvc))
	return nil
}
