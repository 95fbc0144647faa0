package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"VacancyPulse/internal/domain/models"
	drepo "VacancyPulse/internal/domain/repository"
	"VacancyPulse/internal/repository"
	"VacancyPulse/internal/service/currency"
	"VacancyPulse/pkg/logger"
	"VacancyPulse/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	header  []string
	records []models.RawRecord
	err     error
}

func (s *staticSource) Load(context.Context) ([]string, []models.RawRecord, error) {
	return s.header, s.records, s.err
}

func sourceOf(rows ...[]string) *staticSource {
	recs := make([]models.RawRecord, len(rows))
	for i, r := range rows {
		recs[i] = models.RawRecord{Line: i + 2, Fields: r}
	}
	return &staticSource{header: testHeader, records: recs}
}

func datasetRows() [][]string {
	cities := []string{"Москва", "Санкт-Петербург", "Казань", "Омск"}
	titles := []string{"Аналитик данных", "Разработчик", "Системный аналитик", "Бизнес-Аналитик"}
	currencies := []string{"RUR", "RUR", "USD", "EUR"}

	var rows [][]string
	for i := 0; i < 200; i++ {
		year := 2015 + i%6
		rows = append(rows, []string{
			titles[i%len(titles)],
			fmt.Sprint(1000 + 37*i),
			fmt.Sprint(2000 + 53*i),
			currencies[i%len(currencies)],
			cities[(i/3)%len(cities)],
			fmt.Sprintf("%d-%02d-10T12:00:00+0300", year, 1+i%12),
		})
	}
	rows = append(rows,
		[]string{"Broken", "1", "2"},
		[]string{"Empty", "", "2", "RUR", "Омск", "2016-01-01"},
		[]string{"Unknown", "10", "20", "XYZ", "Омск", "2016-01-01"},
	)
	return rows
}

func newEngine(src drepo.RecordSource, stores drepo.PartitionStoreFactory, workers int) *StatsEngine {
	return NewStatsEngine(src, nil, stores, metrics.Nop{}, logger.Nop(), EngineConfig{
		BaseCurrency: "RUR",
		Static:       currency.DefaultRateTable(),
		Workers:      workers,
	})
}

var defaultParams = RunParams{Vacancy: "Аналитик", ShareFloor: 0.01, TopN: 10}

func TestRunScenario(t *testing.T) {
	src := sourceOf(
		[]string{"Engineer", "100", "200", "RUR", "Moscow", "2020-03-01T00:00:00+0300"},
		[]string{"Analyst", "50", "50", "RUR", "Moscow", "2020-05-01T00:00:00+0300"},
	)
	e := newEngine(src, repository.MemoryPartitionStores(), 4)

	r, err := e.Run(context.Background(), RunParams{Vacancy: "Analyst", ShareFloor: 0.01, TopN: 10})
	require.NoError(t, err)

	require.Len(t, r.Years, 1)
	assert.Equal(t, models.YearStat{Year: 2020, MeanSalaryAll: 100, CountAll: 2, MeanSalaryFiltered: 50, CountFiltered: 1}, r.Years[0])
	require.Len(t, r.SalaryRanking, 1)
	assert.Equal(t, models.CityStat{City: "Moscow", MeanSalary: 100, Count: 2, Share: 1}, r.SalaryRanking[0])
	assert.Equal(t, "RUR", r.BaseCurrency)
	assert.NotEmpty(t, r.RunID)
}

func TestRunCountsInvariants(t *testing.T) {
	e := newEngine(sourceOf(datasetRows()...), repository.MemoryPartitionStores(), 4)

	r, err := e.Run(context.Background(), defaultParams)
	require.NoError(t, err)

	q := r.Quality
	assert.Equal(t, 203, q.Total)
	assert.Equal(t, 200, q.Accepted)
	assert.Equal(t, 2, q.Rejected)
	assert.Equal(t, 1, q.Unresolved)
	assert.Equal(t, q.Total, q.Accepted+q.Rejected+q.Unresolved)

	sum := 0
	for i, y := range r.Years {
		sum += y.CountAll
		assert.LessOrEqual(t, y.CountFiltered, y.CountAll)
		if i > 0 {
			assert.Less(t, r.Years[i-1].Year, y.Year)
		}
	}
	assert.Equal(t, q.Accepted, sum)

	assert.Len(t, r.FilteredCountByYear(), len(r.CountByYear()))

	shares := 0.0
	for _, c := range r.ShareRanking {
		shares += c.Share
	}
	assert.LessOrEqual(t, shares, 1.0)
}

func TestRunIsIdempotent(t *testing.T) {
	e := newEngine(sourceOf(datasetRows()...), repository.MemoryPartitionStores(), 4)

	a, err := e.Run(context.Background(), defaultParams)
	require.NoError(t, err)
	b, err := e.Run(context.Background(), defaultParams)
	require.NoError(t, err)

	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Years, b.Years)
	assert.Equal(t, a.SalaryRanking, b.SalaryRanking)
	assert.Equal(t, a.ShareRanking, b.ShareRanking)
	assert.Equal(t, a.Quality, b.Quality)
}

func TestRunSequentialAndCSVStoreMatchParallelMemory(t *testing.T) {
	rows := datasetRows()

	parallel, err := newEngine(sourceOf(rows...), repository.MemoryPartitionStores(), 4).Run(context.Background(), defaultParams)
	require.NoError(t, err)

	root := filepath.Join(t.TempDir(), "parts")
	sequential, err := newEngine(sourceOf(rows...), repository.CSVPartitionStores(root), 1).Run(context.Background(), defaultParams)
	require.NoError(t, err)

	assert.Equal(t, parallel.Years, sequential.Years)
	assert.Equal(t, parallel.SalaryRanking, sequential.SalaryRanking)
	assert.Equal(t, parallel.ShareRanking, sequential.ShareRanking)
}

type failingStore struct {
	*repository.MemoryPartitionStore
	year int
}

func (s failingStore) Load(ctx context.Context, year int) ([]models.Vacancy, error) {
	if year == s.year {
		return nil, errors.New("disk gone")
	}
	return s.MemoryPartitionStore.Load(ctx, year)
}

func TestRunPartitionFailureIsFatal(t *testing.T) {
	stores := func(string) (drepo.PartitionStore, error) {
		return failingStore{MemoryPartitionStore: repository.NewMemoryPartitionStore(), year: 2017}, nil
	}
	e := newEngine(sourceOf(datasetRows()...), stores, 2)

	_, err := e.Run(context.Background(), defaultParams)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPartitionTask)

	var pe *models.PartitionTaskError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2017, pe.Year)
}

func TestRunEmptyDataset(t *testing.T) {
	e := newEngine(sourceOf([]string{"Broken"}), repository.MemoryPartitionStores(), 4)
	_, err := e.Run(context.Background(), defaultParams)
	assert.ErrorIs(t, err, models.ErrEmptyDataset)
}

func TestRunMissingColumn(t *testing.T) {
	src := &staticSource{header: []string{"name", "salary_from"}}
	e := newEngine(src, repository.MemoryPartitionStores(), 4)
	_, err := e.Run(context.Background(), defaultParams)
	assert.ErrorIs(t, err, models.ErrMissingColumn)
}

func TestRunSourceError(t *testing.T) {
	e := newEngine(&staticSource{err: errors.New("no such file")}, repository.MemoryPartitionStores(), 4)
	_, err := e.Run(context.Background(), defaultParams)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load records")
}

type tableSource map[models.YearMonth]map[string]float64

func (s tableSource) Rates(_ context.Context, p models.YearMonth) (map[string]float64, error) {
	r, ok := s[p]
	if !ok {
		return nil, errors.New("not published")
	}
	return r, nil
}

func TestRunUsesMonthlyRatesForUnknownCurrency(t *testing.T) {
	src := sourceOf(
		[]string{"Dev", "100", "100", "KZT", "Алматы", "2021-01-15"},
		[]string{"Dev", "100", "100", "KZT", "Алматы", "2021-02-15"},
		[]string{"Dev", "100", "100", "KZT", "Алматы", "2021-03-15"},
		[]string{"Dev", "300", "300", "RUR", "Москва", "2021-03-15"},
	)
	rates := tableSource{
		{Year: 2021, Month: 1}: {"KZT": 0.2},
		{Year: 2021, Month: 3}: {"KZT": 0.3},
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewWithRegisterer(reg)
	builder := currency.NewMonthlyBuilder(rates, nil, rec, logger.Nop(), currency.MonthlyBuilderConfig{
		Base:         "RUR",
		Threshold:    2,
		FetchTimeout: time.Second,
	})
	e := NewStatsEngine(src, builder, repository.MemoryPartitionStores(), rec, logger.Nop(), EngineConfig{
		BaseCurrency: "RUR",
		Static:       models.RateTable{"USD": 60.66},
		Workers:      2,
	})

	r, err := e.Run(context.Background(), RunParams{ShareFloor: 0, TopN: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, r.Quality.RateFetchFailures)
	assert.Equal(t, 1, r.Quality.Unresolved)
	assert.Equal(t, 3, r.Quality.Accepted)
	require.Len(t, r.Years, 1)
	// (20 + 30 + 300) / 3
	assert.Equal(t, 116, r.Years[0].MeanSalaryAll)

	n, err := testutil.GatherAndCount(reg, "vacancypulse_records_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "accepted and unresolved series")
}
