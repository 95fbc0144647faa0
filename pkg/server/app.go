package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/usecase"
	"VacancyPulse/pkg/config"
	xhttp "VacancyPulse/pkg/http"
	applogger "VacancyPulse/pkg/logger"
)

// Runner computes one report.
type Runner interface {
	Run(ctx context.Context, p usecase.RunParams) (*models.Report, error)
}

// Processor hands a report to the configured sink.
type Processor interface {
	Process(ctx context.Context, r *models.Report) error
	Close()
}

// App encapsulates the application lifecycle: a single batch run, or the
// HTTP server until a signal arrives.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	engine    Runner
	processor Processor
	http      *xhttp.Server
	signals   []os.Signal
}

// New creates a new App instance with all dependencies. httpServer may be nil
// when cfg.Server.Enabled is false.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	engine Runner,
	processor Processor,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		engine:    engine,
		processor: processor,
		http:      httpServer,
		signals:   []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Run serves HTTP when enabled, otherwise computes one report from the
// configured input and exits.
func (a *App) Run(ctx context.Context) error {
	defer a.processor.Close()

	if a.cfg.Server.Enabled {
		return a.Serve(ctx)
	}
	return a.RunOnce(ctx)
}

// RunOnce computes a report for the configured vacancy and sends it to the sink.
func (a *App) RunOnce(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	start := time.Now()
	report, err := a.engine.Run(ctx, usecase.RunParams{
		Vacancy:    a.cfg.Engine.Vacancy,
		ShareFloor: a.cfg.Engine.ShareFloor,
		TopN:       a.cfg.Engine.TopN,
	})
	if err != nil {
		return fmt.Errorf("run engine: %w", err)
	}

	if err := a.processor.Process(ctx, report); err != nil {
		return err
	}

	a.log.Info("report delivered",
		applogger.String("run_id", report.RunID),
		applogger.String("sink", a.cfg.Sink.Type),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return nil
}

// Serve starts the HTTP server and blocks until ctx is done, a signal
// arrives or the listener fails.
func (a *App) Serve(ctx context.Context) error {
	if a.http == nil {
		return errors.New("http server is not configured")
	}

	ctx, stop := signal.NotifyContext(ctx, a.signals...)
	defer stop()

	if err := a.http.Start(); err != nil {
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case serveErr = <-a.http.Err():
		a.log.Error("http server failed", applogger.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.http.Stop(shutdownCtx); err != nil {
		a.log.Warn("http shutdown error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return serveErr
}
