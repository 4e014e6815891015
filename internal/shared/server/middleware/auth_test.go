package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"lendnova-backend/internal/shared/auth"
)

func newAuthRouter(t *testing.T, allowDev bool) (*gin.Engine, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := auth.NewTokens("test-secret", "dev")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	router := gin.New()
	router.Use(Auth(tokens, allowDev))
	router.GET("/api/v1/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})
	router.OPTIONS("/api/v1/whoami", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, tokens
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router, _ := newAuthRouter(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/whoami", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	router, tokens := newAuthRouter(t, false)
	tok, err := tokens.Sign("borrower-7", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || resp.Body.String() != "borrower-7" {
		t.Fatalf("expected 200 borrower-7, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	router, _ := newAuthRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthDevHeader(t *testing.T) {
	router, _ := newAuthRouter(t, true)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
	req.Header.Set("X-User-Id", "dev-user")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || resp.Body.String() != "dev-user" {
		t.Fatalf("expected dev header to authenticate, got %d %q", resp.Code, resp.Body.String())
	}

	strict, _ := newAuthRouter(t, false)
	resp = httptest.NewRecorder()
	strict.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when dev header disabled, got %d", resp.Code)
	}
}
