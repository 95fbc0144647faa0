package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/service/ratelimit"
	"VacancyPulse/internal/usecase"
	xlogger "VacancyPulse/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	got usecase.RunParams
	err error
}

func (f *fakeRunner) Run(_ context.Context, p usecase.RunParams) (*models.Report, error) {
	f.got = p
	if f.err != nil {
		return nil, f.err
	}
	return &models.Report{
		RunID:   "run-1",
		Vacancy: p.Vacancy,
		Years:   []models.YearStat{{Year: 2022, MeanSalaryAll: 100, CountAll: 1}},
	}, nil
}

func serve(t *testing.T, h *StatsEchoHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func TestStatsAppliesDefaults(t *testing.T) {
	runner := &fakeRunner{}
	h := NewStatsEchoHandler(xlogger.Nop(), runner, nil, 0.01, 0)

	rec := serve(t, h, "/api/stats?vacancy=%D0%90%D0%BD%D0%B0%D0%BB%D0%B8%D1%82%D0%B8%D0%BA")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, usecase.RunParams{Vacancy: "Аналитик", ShareFloor: 0.01, TopN: 10}, runner.got)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var report models.Report
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "run-1", report.RunID)
	assert.Len(t, report.Years, 1)
}

func TestStatsKeepsExplicitZeroFloor(t *testing.T) {
	runner := &fakeRunner{}
	h := NewStatsEchoHandler(xlogger.Nop(), runner, nil, 0.01, 0)

	rec := serve(t, h, "/api/stats?share_floor=0&top_n=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, runner.got.ShareFloor)
	assert.Equal(t, 3, runner.got.TopN)
}

func TestStatsValidation(t *testing.T) {
	h := NewStatsEchoHandler(xlogger.Nop(), &fakeRunner{}, nil, 0.01, 0)

	for _, q := range []string{"top_n=500", "share_floor=1.5", "top_n=abc"} {
		rec := serve(t, h, "/api/stats?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestStatsMapsEngineErrors(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("run: %w", models.ErrEmptyDataset):     http.StatusUnprocessableEntity,
		context.DeadlineExceeded:                          http.StatusServiceUnavailable,
		&models.PartitionTaskError{Year: 2020, Err: nil}: http.StatusInternalServerError,
		errors.New("boom"):                                http.StatusInternalServerError,
	}
	for err, code := range cases {
		h := NewStatsEchoHandler(xlogger.Nop(), &fakeRunner{err: err}, nil, 0.01, 0)
		rec := serve(t, h, "/api/stats")
		assert.Equal(t, code, rec.Code, err.Error())
	}
}

func TestStatsRateLimited(t *testing.T) {
	h := NewStatsEchoHandler(xlogger.Nop(), &fakeRunner{}, ratelimit.New(1, 0.0001), 0.01, 0)

	assert.Equal(t, http.StatusOK, serve(t, h, "/api/stats").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(t, h, "/api/stats").Code)
}

func TestHealth(t *testing.T) {
	h := NewStatsEchoHandler(xlogger.Nop(), &fakeRunner{}, nil, 0.01, 0)
	assert.Equal(t, http.StatusOK, serve(t, h, "/api/health").Code)

	h.AddHealthCheck("clickhouse", func(context.Context) error { return errors.New("connection refused") })
	rec := serve(t, h, "/api/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
