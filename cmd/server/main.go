package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/notracepdf/notracepdf/internal/config"
	"github.com/notracepdf/notracepdf/internal/handlers"
	"github.com/notracepdf/notracepdf/internal/logger"
	"github.com/notracepdf/notracepdf/internal/ops"
	"github.com/notracepdf/notracepdf/internal/server"
	"github.com/notracepdf/notracepdf/internal/storagecheck"
	"github.com/notracepdf/notracepdf/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func main() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,

			ops.NewRegistry,

			provideServerHandler(handlers.NewHealthHandler),
			provideServerHandler(handlers.NewValidateHandler),
			provideServerHandler(handlers.NewPDFHandler),
			provideServerHandler(handlers.NewImageHandler),
			provideServerHandler(handlers.NewConvertHandler),
			provideServerHandler(handlers.NewBatchHandler),

			provideServer,
		),
		fx.Invoke(
			verifyStorageBoundary,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config, params.ServerHandlers...)
}

// verifyStorageBoundary refuses to serve if the scratch directories already
// hold residue at startup, and checks them again on shutdown. A request must
// not be able to leave anything behind that a restart would then inherit.
func verifyStorageBoundary(lc fx.Lifecycle, logger *slog.Logger, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storagecheck.Verify(cfg.Scratch.Dirs); err != nil {
				return fmt.Errorf("storage boundary: %w", err)
			}
			logger.Info("storage boundary verified", slog.Int("dirs", len(cfg.Scratch.Dirs)))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := storagecheck.Verify(cfg.Scratch.Dirs); err != nil {
				logger.Error("storage boundary violated at shutdown", slog.Any("error", err))
				return err
			}
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting notracepdf %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
