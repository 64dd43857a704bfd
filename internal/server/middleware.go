package server

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"
)

// RequestID assigns every request a fresh short correlation id. Any inbound
// X-Request-ID header is discarded first: the id ends up in the request log,
// and the log allowlist only holds if no client-supplied value can reach it.
func RequestID() echo.MiddlewareFunc {
	assign := middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.NewString()[:8]
		},
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := assign(next)
		return func(c echo.Context) error {
			c.Request().Header.Del(echo.HeaderXRequestID)
			return h(c)
		}
	}
}

// CacheHeaders attaches the cache-prevention header set to every response,
// success or error, before the handler runs so even panics recovered further
// up the chain go out with the headers in place. Applying it blanket-wise
// keeps the policy checkable: enumerate the routes, assert the headers.
func CacheHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			return next(c)
		}
	}
}

// RequestLogger emits one log line per request carrying only the allowlisted
// fields: method, route path, status, duration, and the correlation id. The
// allowlist is structural: nothing client-supplied is ever passed to the
// logger, so a new upstream field cannot leak by default. Logging failures
// are swallowed; they must never abort a request.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURIPath:   true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("path", v.URIPath),
				slog.Int("status", v.Status),
				slog.Duration("duration", v.Latency),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	})
}

// ConcurrencyLimit bounds how many requests process simultaneously. Waiting
// respects the request context, so a caller that times out while queued gets
// the timeout error path rather than a slot.
func ConcurrencyLimit(n int) echo.MiddlewareFunc {
	if n < 1 {
		n = 1
	}
	sem := semaphore.NewWeighted(int64(n))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if err := sem.Acquire(ctx, 1); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "server is busy")
			}
			defer sem.Release(1)
			return next(c)
		}
	}
}
