package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes. Messages are fixed
	// strings so responses never leak account state beyond the status itself.
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusLocked, "account temporarily locked due to repeated failed logins"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusUnauthorized, "email address not verified"
	case errors.Is(err, domain.ErrAccountSuspended):
		return http.StatusLocked, "account suspended"
	case errors.Is(err, domain.ErrTokenInvalidOrExpired):
		return http.StatusBadRequest, "token is invalid or has expired"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid session"
	case errors.Is(err, domain.ErrAlreadyVerified):
		return http.StatusBadRequest, "email already verified"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid account status transition"
	case errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusBadGateway, "could not send email, try again later"
	case errors.Is(err, domain.ErrSubjectNotFound):
		return http.StatusNotFound, "subject not found"
	case errors.Is(err, domain.ErrDuplicateSubject):
		return http.StatusConflict, "subject with this name or code already exists"
	case errors.Is(err, domain.ErrSubjectHasMaterials):
		return http.StatusBadRequest, "subject still has materials"
	case errors.Is(err, domain.ErrMaterialNotFound):
		return http.StatusNotFound, "material not found"
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, "question not found"
	case errors.Is(err, domain.ErrAnswerNotFound):
		return http.StatusNotFound, "answer not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
