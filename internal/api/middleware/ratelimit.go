package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/adityapatel007-byte/Student-Material-Hub/internal/api/metrics"
)

// Limiter reports whether a client is within its request quota.
type Limiter interface {
	Allow(ctx context.Context, clientKey string) (bool, error)
}

// RateLimit rejects requests over the quota with 429, keyed by client IP.
// Fails open: when the limiter backend errors the request proceeds, since
// dropping traffic on a Redis hiccup is worse than briefly not limiting.
func RateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Msg("rate limiter unavailable")
				return next(c)
			}
			if !ok {
				metrics.RateLimitedTotal.Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
			}
			return next(c)
		}
	}
}
