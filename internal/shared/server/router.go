package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lendnova-backend/internal/assessments"
	"lendnova-backend/internal/consent"
	"lendnova-backend/internal/documents"
	"lendnova-backend/internal/services/health"
	"lendnova-backend/internal/shared/auth"
	"lendnova-backend/internal/shared/config"
	"lendnova-backend/internal/shared/metrics"
	"lendnova-backend/internal/shared/server/middleware"
)

const (
	rateGroupIngest = "INGEST"
	rateGroupAssess = "ASSESS"
	rateGroupRead   = "READ"
)

// RouterDeps carries everything NewRouter wires into routes.
type RouterDeps struct {
	Config            config.Config
	Tokens            *auth.Tokens
	Health            *health.Service
	DocumentHandler   *documents.Handler
	AssessmentHandler *assessments.Handler
	ConsentHandler    *consent.Handler
	RateLimiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	healthHandler := func(c *gin.Context) {
		report := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
	r.GET("/health", healthHandler)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler)

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Tokens, deps.Config.IsDevLike()),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:      deps.RateLimiter,
			DefaultGroup: rateGroupRead,
			GroupFor:     rateGroupFor,
			Rules: map[string]middleware.RateLimitRule{
				rateGroupIngest: {Rate: 0.2, Burst: 3},
				rateGroupAssess: {Rate: 0.5, Burst: 5},
				rateGroupRead:   {Rate: 5, Burst: 30},
			},
		}),
	)
	registerMeRoutes(authed)
	if deps.ConsentHandler != nil {
		deps.ConsentHandler.RegisterRoutes(authed)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(authed)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.RegisterRoutes(authed)
	}

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return rateGroupRead
	}
	switch c.FullPath() {
	case "/api/v1/documents":
		return rateGroupIngest
	case "/api/v1/assessments":
		return rateGroupAssess
	default:
		return rateGroupRead
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
