package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CryptoIntel/internal/domain/repository"
	"CryptoIntel/internal/handler/ws"
	"CryptoIntel/internal/usecase"
	"CryptoIntel/pkg/cache"
	"CryptoIntel/pkg/config"
	xhttp "CryptoIntel/pkg/http"
	xlogger "CryptoIntel/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *xlogger.Logger
	backend     cache.Service
	hub         *ws.Hub
	broadcaster *usecase.Broadcaster
	publisher   repository.SignalPublisher
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *xlogger.Logger,
	backend cache.Service,
	hub *ws.Hub,
	broadcaster *usecase.Broadcaster,
	publisher repository.SignalPublisher,
	handlers []xhttp.Handler,
) *App {
	httpServer := xhttp.NewServer(handlers,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
	return &App{
		cfg:         cfg,
		logger:      logger,
		backend:     backend,
		hub:         hub,
		broadcaster: broadcaster,
		publisher:   publisher,
		httpServer:  httpServer,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.hub.Run(ctx)
	go a.broadcaster.Run(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", xlogger.Error(err))
		return err
	}
	a.logger.Info("server started",
		xlogger.Int("port", a.cfg.Server.Port),
		xlogger.String("environment", a.cfg.Environment),
		xlogger.String("cache_backend", a.cfg.Cache.Backend))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")

	// Stop broadcast and hub loops first so no writes race the close.
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, done := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer done()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", xlogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("signal publisher close error", xlogger.Error(err))
		}
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("cache close error", xlogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
