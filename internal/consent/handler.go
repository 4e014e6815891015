package consent

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lendnova-backend/internal/shared/server/middleware"
	"lendnova-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/consent", h.grant)
	rg.GET("/consent", h.get)
}

type consentResponse struct {
	Granted   bool       `json:"granted"`
	GrantedAt *time.Time `json:"grantedAt,omitempty"`
}

func (h *Handler) grant(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	rec, err := h.Svc.Grant(c.Request.Context(), userID, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record consent", nil)
		return
	}
	respond.JSON(c, http.StatusCreated, consentResponse{Granted: true, GrantedAt: &rec.GrantedAt})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	rec, err := h.Svc.Get(c.Request.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		respond.OK(c, consentResponse{Granted: false})
		return
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load consent", nil)
		return
	}
	respond.OK(c, consentResponse{Granted: true, GrantedAt: &rec.GrantedAt})
}

// RequireConsent aborts with 403 unless the user has consented.
func RequireConsent(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := svc.Require(c.Request.Context(), middleware.UserIDFromContext(c))
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, ErrConsentRequired):
			respond.Error(c, http.StatusForbidden, "consent_required", "Consent is required before assessment", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check consent", nil)
		}
	}
}
