package repository

import (
	"context"

	"VacancyPulse/internal/domain/models"
)

// RecordSource yields the header and raw rows of a vacancy export.
type RecordSource interface {
	Load(ctx context.Context) (header []string, records []models.RawRecord, err error)
}

// RateSource looks up all exchange rates published for one month.
// The returned map is currency code -> factor into the base currency.
type RateSource interface {
	Rates(ctx context.Context, period models.YearMonth) (map[string]float64, error)
}

// RateCache stores fetched monthly rates between runs.
type RateCache interface {
	Get(ctx context.Context, period models.YearMonth) (map[string]float64, bool, error)
	Set(ctx context.Context, period models.YearMonth, rates map[string]float64) error
}

// PartitionStore holds per-year partitions between partitioning and aggregation.
type PartitionStore interface {
	Save(ctx context.Context, year int, records []models.Vacancy) error
	Load(ctx context.Context, year int) ([]models.Vacancy, error)
	Cleanup() error
}

// PartitionStoreFactory opens a partition store private to one run.
type PartitionStoreFactory func(runID string) (PartitionStore, error)

// ReportStorage persists reports as tables.
type ReportStorage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, r *models.Report) error
	Health(ctx context.Context) error
	Close() error
}

// ReportPublisher emits reports to a message bus.
type ReportPublisher interface {
	Publish(ctx context.Context, r *models.Report) error
	Close() error
}

// ReportWriter renders reports for a human reader.
type ReportWriter interface {
	Write(ctx context.Context, r *models.Report) error
}

type Metrics interface {
	RecordOutcome(outcome string)
	RecordRateFetch(result string)
	RecordPartition(result string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
