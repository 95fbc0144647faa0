package usecase

import (
	"context"
	"errors"
	"testing"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	got    []*models.Report
	err    error
	closed bool
}

func (s *recordingSink) Write(_ context.Context, r *models.Report) error {
	s.got = append(s.got, r)
	return s.err
}

func (s *recordingSink) Store(ctx context.Context, r *models.Report) error {
	return s.Write(ctx, r)
}

func (s *recordingSink) Publish(ctx context.Context, r *models.Report) error {
	return s.Write(ctx, r)
}

func (s *recordingSink) Init(context.Context) error   { return nil }
func (s *recordingSink) Health(context.Context) error { return nil }
func (s *recordingSink) Close() error                 { s.closed = true; return nil }

func TestReportProcessorRoutesByBackend(t *testing.T) {
	for _, backend := range []string{"console", "clickhouse", "kafka"} {
		t.Run(backend, func(t *testing.T) {
			console, store, pub := &recordingSink{}, &recordingSink{}, &recordingSink{}
			p := NewReportProcessor(console, store, pub, metrics.Nop{}, backend)

			r := &models.Report{RunID: "r1"}
			require.NoError(t, p.Process(context.Background(), r))

			byBackend := map[string]*recordingSink{"console": console, "clickhouse": store, "kafka": pub}
			for name, s := range byBackend {
				if name == backend {
					assert.Len(t, s.got, 1)
				} else {
					assert.Empty(t, s.got)
				}
			}
		})
	}
}

func TestReportProcessorErrors(t *testing.T) {
	p := NewReportProcessor(nil, nil, nil, metrics.Nop{}, "kafka")
	assert.Error(t, p.Process(context.Background(), &models.Report{}))
	assert.Error(t, p.Process(context.Background(), nil))

	failing := &recordingSink{err: errors.New("broker down")}
	p = NewReportProcessor(nil, nil, failing, metrics.Nop{}, "kafka")
	err := p.Process(context.Background(), &models.Report{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestReportProcessorClose(t *testing.T) {
	store, pub := &recordingSink{}, &recordingSink{}
	NewReportProcessor(nil, store, pub, metrics.Nop{}, "console").Close()
	assert.True(t, store.closed)
	assert.True(t, pub.closed)
}
