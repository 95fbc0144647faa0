package usecase

import (
	"context"
	"fmt"
	"time"

	"VacancyPulse/internal/domain/models"
	drepo "VacancyPulse/internal/domain/repository"
)

// ReportProcessor routes reports to the configured backend.
type ReportProcessor struct {
	writer  drepo.ReportWriter
	store   drepo.ReportStorage
	pub     drepo.ReportPublisher
	metrics drepo.Metrics
	backend string
}

// NewReportProcessor creates a new ReportProcessor instance. Only the
// dependency matching backend needs to be non-nil.
func NewReportProcessor(
	writer drepo.ReportWriter,
	store drepo.ReportStorage,
	pub drepo.ReportPublisher,
	metrics drepo.Metrics,
	backend string,
) *ReportProcessor {
	return &ReportProcessor{
		writer:  writer,
		store:   store,
		pub:     pub,
		metrics: metrics,
		backend: backend,
	}
}

// Process hands r to the configured backend.
func (p *ReportProcessor) Process(ctx context.Context, r *models.Report) error {
	if r == nil {
		return fmt.Errorf("report is nil")
	}

	start := time.Now()
	var err error

	switch {
	case p.backend == "console" && p.writer != nil:
		err = p.writer.Write(ctx, r)
	case p.backend == "clickhouse" && p.store != nil:
		err = p.store.Store(ctx, r)
	case p.backend == "kafka" && p.pub != nil:
		err = p.pub.Publish(ctx, r)
	default:
		err = fmt.Errorf("unknown or unconfigured backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("sink_" + p.backend)
		return fmt.Errorf("process report: %w", err)
	}

	p.metrics.RecordLatency("sink_"+p.backend, time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *ReportProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
