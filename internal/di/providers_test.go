package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"VacancyPulse/internal/repository"
	"VacancyPulse/internal/usecase"
	"VacancyPulse/pkg/cache"
	"VacancyPulse/pkg/config"
	applogger "VacancyPulse/pkg/logger"
	"VacancyPulse/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func TestProvideCacheSelectsBackend(t *testing.T) {
	cfg := defaultConfig(t)

	cfg.Cache.Type = "none"
	c, cleanup, err := ProvideCache(cfg, applogger.Nop())
	require.NoError(t, err)
	cleanup()
	assert.Nil(t, c)
	assert.Nil(t, ProvideRateCache(c, cfg))

	cfg.Cache.Type = "memory"
	c, cleanup, err = ProvideCache(cfg, applogger.Nop())
	require.NoError(t, err)
	defer cleanup()
	assert.IsType(t, &cache.MemoryCache{}, c)
	assert.NotNil(t, ProvideRateCache(c, cfg))
}

func TestProvideMonthlyBuilderFollowsConfig(t *testing.T) {
	cfg := defaultConfig(t)
	src := ProvideRateSource(cfg)
	rec := metrics.NewWithRegisterer(prometheus.NewRegistry())

	assert.Nil(t, ProvideMonthlyBuilder(cfg, src, nil, rec, applogger.Nop()))

	cfg.Currency.MonthlyEnabled = true
	assert.NotNil(t, ProvideMonthlyBuilder(cfg, src, nil, rec, applogger.Nop()))
}

func TestProvidePartitionStoresUsesDir(t *testing.T) {
	cfg := defaultConfig(t)

	store, err := ProvidePartitionStores(cfg)("run")
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryPartitionStore{}, store)

	cfg.Engine.PartitionDir = t.TempDir()
	store, err = ProvidePartitionStores(cfg)("run")
	require.NoError(t, err)
	require.IsType(t, &repository.CSVPartitionStore{}, store)
	assert.Equal(t, filepath.Join(cfg.Engine.PartitionDir, "run"), store.(*repository.CSVPartitionStore).Dir())
}

func TestProvideStatsEngineEndToEnd(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Currency.Static = nil

	input := filepath.Join(t.TempDir(), "vacancies.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"name,salary_from,salary_to,salary_currency,area_name,published_at\n"+
			"Аналитик,100,200,USD,Москва,2022-07-05T18:19:30+0300\n",
	), 0o644))
	cfg.Engine.Input = input

	rec := metrics.NewWithRegisterer(prometheus.NewRegistry())
	engine := ProvideStatsEngine(cfg, ProvideRecordSource(cfg), nil, ProvidePartitionStores(cfg), rec, applogger.Nop())

	report, err := engine.Run(context.Background(), usecase.RunParams{
		Vacancy:    cfg.Engine.Vacancy,
		ShareFloor: cfg.Engine.ShareFloor,
		TopN:       cfg.Engine.TopN,
	})
	require.NoError(t, err)
	require.Len(t, report.Years, 1)
	assert.Equal(t, 9099, report.Years[0].MeanSalaryAll)
}

func TestSinksStayOffForConsole(t *testing.T) {
	cfg := defaultConfig(t)

	ch, cleanup, err := ProvideClickHouseClient(cfg, applogger.Nop())
	require.NoError(t, err)
	cleanup()
	assert.Nil(t, ch)

	store, err := ProvideReportStorage(ch)
	require.NoError(t, err)
	assert.Nil(t, store)

	producer, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, producer)
	assert.Nil(t, ProvideReportPublisher(producer))
}
