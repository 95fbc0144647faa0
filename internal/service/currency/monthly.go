package currency

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
	"VacancyPulse/pkg/logger"
	"VacancyPulse/pkg/util"
)

// CurrencyStats summarizes the currencies of a raw dataset.
type CurrencyStats struct {
	Counts map[string]int
	Min    models.YearMonth
	Max    models.YearMonth
}

// HasRange reports whether at least one valid period was observed.
func (s CurrencyStats) HasRange() bool {
	return s.Min.Valid() && s.Max.Valid()
}

// Material returns currencies seen more than threshold times, excluding base,
// in alphabetical order.
func (s CurrencyStats) Material(threshold int, base string) []string {
	var out []string
	for code, n := range s.Counts {
		if n > threshold && code != base {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// ScanCurrencies counts currency codes and finds the period range over rows
// whose shape matches the header. Rows with an empty currency are skipped.
func ScanCurrencies(header []string, records []models.RawRecord) (CurrencyStats, error) {
	curIdx, pubIdx := -1, -1
	for i, col := range header {
		switch col {
		case models.ColCurrency:
			curIdx = i
		case models.ColPublished:
			pubIdx = i
		}
	}
	if curIdx < 0 {
		return CurrencyStats{}, fmt.Errorf("%w: %s", models.ErrMissingColumn, models.ColCurrency)
	}
	if pubIdx < 0 {
		return CurrencyStats{}, fmt.Errorf("%w: %s", models.ErrMissingColumn, models.ColPublished)
	}

	stats := CurrencyStats{Counts: make(map[string]int)}
	for _, rec := range records {
		if len(rec.Fields) != len(header) {
			continue
		}
		code := rec.Fields[curIdx]
		if code == "" {
			continue
		}
		stats.Counts[code]++

		published := rec.Fields[pubIdx]
		year, err := util.LeadingYear(published)
		if err != nil {
			continue
		}
		month, ok := util.LeadingMonth(published)
		if !ok {
			continue
		}
		p := models.YearMonth{Year: year, Month: month}
		if !stats.Min.Valid() || p.Before(stats.Min) {
			stats.Min = p
		}
		if !stats.Max.Valid() || stats.Max.Before(p) {
			stats.Max = p
		}
	}
	return stats, nil
}

// MonthlyBuilderConfig holds monthly builder settings.
type MonthlyBuilderConfig struct {
	Base         string
	Threshold    int
	FetchTimeout time.Duration
}

// MonthlyBuilder fetches one rate table per month for the material
// currencies of a dataset.
type MonthlyBuilder struct {
	source  repository.RateSource
	cache   repository.RateCache
	metrics repository.Metrics
	log     *logger.Logger
	cfg     MonthlyBuilderConfig
}

// NewMonthlyBuilder creates a builder. cache may be nil.
func NewMonthlyBuilder(
	source repository.RateSource,
	cache repository.RateCache,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg MonthlyBuilderConfig,
) *MonthlyBuilder {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	return &MonthlyBuilder{
		source:  source,
		cache:   cache,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
	}
}

// Build walks every month of the observed range in order and collects the
// factors of the material currencies. A month whose lookup fails is skipped
// and counted; cancelling ctx aborts the build.
func (b *MonthlyBuilder) Build(ctx context.Context, stats CurrencyStats) (*models.MonthlyRates, int, error) {
	out := models.NewMonthlyRatesBuilder()

	codes := stats.Material(b.cfg.Threshold, b.cfg.Base)
	if len(codes) == 0 || !stats.HasRange() {
		return out.Build(), 0, nil
	}

	b.log.Info("building monthly rates",
		logger.Strings("currencies", codes),
		logger.String("from", stats.Min.String()),
		logger.String("to", stats.Max.String()),
	)

	failed := 0
	for p := stats.Min; !stats.Max.Before(p); p = p.Next() {
		if err := ctx.Err(); err != nil {
			return nil, failed, err
		}

		rates, err := b.ratesFor(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil, failed, ctx.Err()
			}
			failed++
			b.metrics.RecordRateFetch("failed")
			b.log.Warn("monthly rates unavailable", logger.String("period", p.String()), logger.Error(err))
			continue
		}

		for _, code := range codes {
			if f, ok := rates[code]; ok && f > 0 {
				out.Set(code, p, f)
			}
		}
	}

	table := out.Build()
	b.log.Info("monthly rates ready", logger.Int("entries", table.Len()), logger.Int("failed_periods", failed))
	return table, failed, nil
}

func (b *MonthlyBuilder) ratesFor(ctx context.Context, p models.YearMonth) (map[string]float64, error) {
	if b.cache != nil {
		rates, ok, err := b.cache.Get(ctx, p)
		if err != nil {
			b.log.Debug("rate cache get failed", logger.String("period", p.String()), logger.Error(err))
		} else if ok {
			b.metrics.RecordRateFetch("cached")
			return rates, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, b.cfg.FetchTimeout)
	defer cancel()

	rates, err := b.source.Rates(fetchCtx, p)
	if err != nil {
		var rfe *models.RateFetchError
		if errors.As(err, &rfe) {
			return nil, err
		}
		return nil, &models.RateFetchError{Period: p, Err: err}
	}
	b.metrics.RecordRateFetch("ok")

	if b.cache != nil {
		if err := b.cache.Set(ctx, p, rates); err != nil {
			b.log.Debug("rate cache set failed", logger.String("period", p.String()), logger.Error(err))
		}
	}
	return rates, nil
}
