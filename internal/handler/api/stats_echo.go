package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/service/ratelimit"
	"VacancyPulse/internal/usecase"
	xhttp "VacancyPulse/pkg/http"
	xlogger "VacancyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatsRunner runs the aggregation engine once.
type StatsRunner interface {
	Run(ctx context.Context, p usecase.RunParams) (*models.Report, error)
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// StatsEchoHandler serves reports over HTTP.
type StatsEchoHandler struct {
	logger     *xlogger.Logger
	engine     StatsRunner
	rl         *ratelimit.Limiter
	shareFloor float64
	timeout    time.Duration
	checks     map[string]HealthCheck
}

// NewStatsEchoHandler creates the handler. shareFloor applies when the query
// has no share_floor; rl may be nil to disable per-client limiting.
func NewStatsEchoHandler(
	logger *xlogger.Logger,
	engine StatsRunner,
	rl *ratelimit.Limiter,
	shareFloor float64,
	timeout time.Duration,
) *StatsEchoHandler {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &StatsEchoHandler{
		logger:     logger,
		engine:     engine,
		rl:         rl,
		shareFloor: shareFloor,
		timeout:    timeout,
		checks:     make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency probe reported by /api/health.
func (h *StatsEchoHandler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

func (h *StatsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/stats", h.Stats)
	g.GET("/health", h.Health)
}

// Stats runs the engine for the requested vacancy filter.
func (h *StatsEchoHandler) Stats(c echo.Context) error {
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many report requests"))
	}

	req := &models.StatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if c.QueryParam("share_floor") == "" {
		req.ShareFloor = h.shareFloor
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	report, err := h.engine.Run(ctx, usecase.RunParams{
		Vacancy:    req.Vacancy,
		ShareFloor: req.ShareFloor,
		TopN:       req.TopN,
	})
	if err != nil {
		h.logger.Error("stats usecase error", xlogger.String("vacancy", req.Vacancy), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

// Health reports "ok" or the failing dependencies.
func (h *StatsEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, failed)
	}
	return xhttp.SuccessResponse(c, "ok")
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, models.ErrEmptyDataset), errors.Is(err, models.ErrMissingColumn):
		return xhttp.UnprocessableErrorf("dataset cannot be aggregated").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.UnavailableErrorf("report timed out").WithError(err)
	case errors.Is(err, models.ErrPartitionTask):
		return xhttp.NewAppError("ERR_INTERNAL", "", "aggregation failed", http.StatusInternalServerError).WithError(err)
	}
	return err
}
