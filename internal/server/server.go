// Package server provides the HTTP server and Echo setup for the conversion API.
//
// The middleware chain is assembled here in one place, in a fixed order, so
// the blanket policies (cache-prevention headers on every response, allowlist
// request logging) visibly apply to every route including liveness and any
// static assets. No route opts out.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/notracepdf/notracepdf/internal/config"
	"github.com/notracepdf/notracepdf/internal/handlers"
	"github.com/notracepdf/notracepdf/internal/ops"
)

// Server is the HTTP server (Echo) with the zero-trace middleware chain and
// registered handlers.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger
}

// Handler registers routes on the Echo instance.
type Handler interface {
	Register(e *echo.Echo)
}

// NewServer builds the Echo server with recovery, correlation ids, blanket
// cache-prevention headers, sanitized request logging, body/time/concurrency
// limits, and the given handlers.
func NewServer(log *slog.Logger, cfg config.Config, handlers ...Handler) *Server {
	addr := cfg.Server.Addr
	if addr == "" {
		addr = config.DefaultHTTPAddr
	}

	e := New(log, cfg, handlers...)

	// Server-level timeouts back up the per-request budget: a stalled
	// upload or a stalled reader cannot hold a worker indefinitely.
	timeout := cfg.Limits.Timeout()
	e.Server.ReadTimeout = timeout
	e.Server.WriteTimeout = 2 * timeout

	return &Server{
		echo:   e,
		addr:   addr,
		logger: log.With(slog.String("component", "server")),
	}
}

// New builds the fully wired Echo instance. Split out from NewServer so tests
// can drive the complete middleware chain through httptest.
//
// The per-request timeout cancels the request context; it surfaces as a 504
// only when a handler observes that context. Handlers check it after upload
// intake, before handing the bytes to a conversion call, and the server-level
// read/write timeouts in NewServer bound anything that never looks.
func New(log *slog.Logger, cfg config.Config, hs ...Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	e.Use(middleware.Recover())
	e.Use(RequestID())
	e.Use(CacheHeaders())
	e.Use(RequestLogger(log))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Limits.MaxUploadMB)))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: cfg.Limits.Timeout(),
		ErrorHandler: func(err error, c echo.Context) error {
			if errors.Is(err, context.DeadlineExceeded) {
				return context.DeadlineExceeded
			}
			return err
		},
	}))
	e.Use(ConcurrencyLimit(cfg.Limits.MaxConcurrent))
	e.Use(middleware.CORS())

	for _, h := range hs {
		if h != nil {
			h.Register(e)
		}
	}

	return e
}

// NewHTTPErrorHandler translates any error into the stable JSON error body.
// It is the single point where errors become client-visible text: error
// kinds pass through, library diagnostics and echoed input do not.
func NewHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := ops.HTTPStatus(err)
		detail := ops.Detail(err)
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				detail = msg
			} else {
				detail = http.StatusText(status)
			}
		}

		if writeErr := c.JSON(status, handlers.ErrorResponse{Detail: detail}); writeErr != nil {
			log.Error("write error response", slog.String("kind", ops.Kind(err)))
		}
	}
}

// Start starts the HTTP server (blocks until shutdown).
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
