package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"matha-service/internal/domain"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// statusFor maps domain errors onto HTTP status codes and stable error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrNoQuestions):
		return http.StatusConflict, "unavailable"
	case errors.Is(err, domain.ErrSessionCompleted):
		return http.StatusConflict, "session_completed"
	case errors.Is(err, domain.ErrSessionNotStarted):
		return http.StatusConflict, "session_not_started"
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusConflict, "question_mismatch"
	case errors.Is(err, domain.ErrOTPCooldown):
		return http.StatusTooManyRequests, "otp_cooldown"
	case errors.Is(err, domain.ErrOTPAttemptsExceeded):
		return http.StatusTooManyRequests, "otp_attempts_exceeded"
	case errors.Is(err, domain.ErrOTPNotFound):
		return http.StatusUnauthorized, "otp_not_found"
	case errors.Is(err, domain.ErrOTPExpired):
		return http.StatusUnauthorized, "otp_expired"
	case errors.Is(err, domain.ErrOTPInvalid):
		return http.StatusUnauthorized, "otp_invalid"
	}
	return http.StatusInternalServerError, "internal"
}

func (a *API) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.Log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorEnvelope{Error: APIError{Message: msg, Code: "invalid_request"}})
}
