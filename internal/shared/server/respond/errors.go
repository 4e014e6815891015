package respond

import (
	"github.com/gin-gonic/gin"

	"lendnova-backend/internal/shared/telemetry"
)

// Error codes returned in the envelope.
const (
	CodeValidation       = "validation_error"
	CodeUnauthorized     = "unauthorized"
	CodeConsentRequired  = "consent_required"
	CodeNotFound         = "not_found"
	CodePayloadTooLarge  = "payload_too_large"
	CodeRateLimited      = "rate_limited"
	CodeQueueUnavailable = "queue_unavailable"
	CodeInternal         = "internal_error"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts with the error envelope. 4xx responses
// log at warn, 5xx at error.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	requestID := c.GetString("requestId")
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": requestID,
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
	})
}
