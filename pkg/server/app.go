package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PairScope/pkg/config"
	xhttp "PairScope/pkg/http"
	applogger "PairScope/pkg/logger"
)

// Runner is the ingest pipeline lifecycle the app drives.
type Runner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// App encapsulates the application lifecycle: the collector pipeline and
// the HTTP query surface.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	collector  Runner
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, log *applogger.Logger, collector Runner, handler xhttp.Handler) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		collector: collector,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	if err := a.collector.Start(ctx); err != nil {
		a.log.Error("collector start failed", applogger.Error(err))
		return err
	}
	a.log.Info("collector started",
		applogger.Strings("symbols", a.cfg.Binance.Symbols),
		applogger.String("pair_a", a.cfg.Pair.SymbolA),
		applogger.String("pair_b", a.cfg.Pair.SymbolB),
	)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start failed", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops the pipeline first so no writes race the HTTP drain.
func (a *App) shutdown(ctx context.Context) error {
	if err := a.collector.Shutdown(ctx); err != nil {
		a.log.Warn("collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete")
	return nil
}
