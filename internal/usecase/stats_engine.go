package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"VacancyPulse/internal/domain/models"
	drepo "VacancyPulse/internal/domain/repository"
	"VacancyPulse/internal/service/currency"
	"VacancyPulse/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// EngineConfig holds the run-independent settings of the engine.
type EngineConfig struct {
	BaseCurrency    string
	Static          models.RateTable
	CurrencyOptions currency.Options
	Workers         int
}

// RunParams are the caller-supplied inputs of one run.
type RunParams struct {
	Vacancy    string
	ShareFloor float64
	TopN       int
}

// StatsEngine computes a full report from one pass over the record source.
type StatsEngine struct {
	source     drepo.RecordSource
	monthly    *currency.MonthlyBuilder
	partitions drepo.PartitionStoreFactory
	metrics    drepo.Metrics
	log        *logger.Logger
	cfg        EngineConfig
	now        func() time.Time
}

// NewStatsEngine creates an engine. monthly may be nil to disable monthly rates.
func NewStatsEngine(
	source drepo.RecordSource,
	monthly *currency.MonthlyBuilder,
	partitions drepo.PartitionStoreFactory,
	metrics drepo.Metrics,
	log *logger.Logger,
	cfg EngineConfig,
) *StatsEngine {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = currency.DefaultBase
	}
	if cfg.Static == nil {
		cfg.Static = currency.DefaultRateTable()
	}
	return &StatsEngine{
		source:     source,
		monthly:    monthly,
		partitions: partitions,
		metrics:    metrics,
		log:        log,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Run loads, normalizes and aggregates the dataset. Rejected rows and
// unresolved currencies are counted and dropped; a failed partition task
// fails the run.
func (e *StatsEngine) Run(ctx context.Context, p RunParams) (*models.Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := e.log.With(logger.String("run_id", runID))

	header, raws, err := e.source.Load(ctx)
	if err != nil {
		e.metrics.RecordError("load")
		return nil, fmt.Errorf("load records: %w", err)
	}
	quality := models.Quality{Total: len(raws)}
	log.Info("records loaded", logger.Int("rows", len(raws)), logger.String("vacancy", p.Vacancy))

	var monthly *models.MonthlyRates
	if e.monthly != nil {
		stats, err := currency.ScanCurrencies(header, raws)
		if err != nil {
			return nil, err
		}
		var failed int
		monthly, failed, err = e.monthly.Build(ctx, stats)
		if err != nil {
			return nil, fmt.Errorf("build monthly rates: %w", err)
		}
		quality.RateFetchFailures = failed
	}

	resolver := currency.NewResolver(e.cfg.BaseCurrency, e.cfg.Static, monthly, e.cfg.CurrencyOptions)
	norm, err := NewNormalizer(header, resolver)
	if err != nil {
		return nil, err
	}

	accepted, err := e.normalizeAll(norm, raws, &quality, log)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return nil, fmt.Errorf("%w: %d rows, %d rejected, %d unresolved",
			models.ErrEmptyDataset, quality.Total, quality.Rejected, quality.Unresolved)
	}

	years, err := e.aggregateYears(ctx, runID, Partition(accepted), p.Vacancy)
	if err != nil {
		e.metrics.RecordError("partition")
		return nil, err
	}

	cities := AggregateCities(accepted, p.ShareFloor, p.TopN)

	report := &models.Report{
		RunID:         runID,
		Vacancy:       p.Vacancy,
		BaseCurrency:  resolver.Base(),
		GeneratedAt:   e.now().UTC(),
		Years:         years,
		SalaryRanking: cities.BySalary,
		ShareRanking:  cities.ByShare,
		Quality:       quality,
	}

	e.metrics.RecordLatency("engine_run", time.Since(start).Seconds())
	log.Info("run complete",
		logger.Int("accepted", quality.Accepted),
		logger.Int("rejected", quality.Rejected),
		logger.Int("unresolved", quality.Unresolved),
		logger.Int("years", len(years)),
		logger.Duration("duration_ms", time.Since(start)),
	)
	return report, nil
}

func (e *StatsEngine) normalizeAll(norm *Normalizer, raws []models.RawRecord, q *models.Quality, log *logger.Logger) ([]models.Vacancy, error) {
	accepted := make([]models.Vacancy, 0, len(raws))
	for _, raw := range raws {
		v, err := norm.Normalize(raw)
		switch {
		case err == nil:
			accepted = append(accepted, v)
			q.Accepted++
			e.metrics.RecordOutcome("accepted")
		case errors.Is(err, models.ErrCurrencyUnresolved):
			q.Unresolved++
			e.metrics.RecordOutcome("unresolved")
			log.Debug("record dropped", logger.Int("line", raw.Line), logger.Error(err))
		case errors.Is(err, models.ErrRecordRejected):
			q.Rejected++
			e.metrics.RecordOutcome("rejected")
			log.Debug("record dropped", logger.Int("line", raw.Line), logger.Error(err))
		default:
			return nil, fmt.Errorf("normalize line %d: %w", raw.Line, err)
		}
	}
	return accepted, nil
}

// aggregateYears stores every partition, then aggregates them on a bounded
// pool. Results are merged by year once all tasks have finished.
func (e *StatsEngine) aggregateYears(ctx context.Context, runID string, parts Partitions, filter string) ([]models.YearStat, error) {
	store, err := e.partitions(runID)
	if err != nil {
		return nil, fmt.Errorf("open partition store: %w", err)
	}
	defer func() {
		if err := store.Cleanup(); err != nil {
			e.log.Warn("partition cleanup failed", logger.String("run_id", runID), logger.Error(err))
		}
	}()

	years := parts.Years()
	for _, y := range years {
		if err := store.Save(ctx, y, parts[y]); err != nil {
			return nil, &models.PartitionTaskError{Year: y, Err: err}
		}
	}

	results := make(chan YearResult, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for _, y := range years {
		year := y
		g.Go(func() error {
			recs, err := store.Load(gctx, year)
			if err != nil {
				e.metrics.RecordPartition("failed")
				return &models.PartitionTaskError{Year: year, Err: err}
			}
			res, err := AggregatePartition(year, recs, filter)
			if err != nil {
				e.metrics.RecordPartition("failed")
				return &models.PartitionTaskError{Year: year, Err: err}
			}
			e.metrics.RecordPartition("ok")
			results <- res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	collected := make([]YearResult, 0, len(years))
	for r := range results {
		collected = append(collected, r)
	}
	return MergeYears(collected)
}
