package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
	"VacancyPulse/internal/handler/api"
	internalrepo "VacancyPulse/internal/repository"
	"VacancyPulse/internal/service/cbr"
	"VacancyPulse/internal/service/currency"
	"VacancyPulse/internal/service/ratelimit"
	"VacancyPulse/internal/usecase"
	"VacancyPulse/pkg/cache"
	pkgch "VacancyPulse/pkg/clickhouse"
	"VacancyPulse/pkg/config"
	xhttp "VacancyPulse/pkg/http"
	pkgkafka "VacancyPulse/pkg/kafka"
	applogger "VacancyPulse/pkg/logger"
	"VacancyPulse/pkg/metrics"
	"VacancyPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the rate cache backend selected by cache.type.
// A nil Service means caching is off.
func ProvideCache(cfg *config.Config, log *applogger.Logger) (cache.Service, func(), error) {
	redisCache := func() (*cache.RedisCache, error) {
		return cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Prefix),
		)
	}

	var svc cache.Service
	switch cfg.Cache.Type {
	case "none":
		return nil, func() {}, nil
	case "memory":
		svc = cache.NewMemoryCache()
	case "redis":
		rc, err := redisCache()
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = rc
	case "layered":
		rc, err := redisCache()
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = cache.NewLayeredCache(rc)
	default:
		return nil, nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}

	cleanup := func() {
		if err := svc.Close(); err != nil {
			log.Warn("cache close error", applogger.Error(err))
		}
	}
	return svc, cleanup, nil
}

// ProvideRateCache adapts the cache to monthly rate tables.
func ProvideRateCache(c cache.Service, cfg *config.Config) repository.RateCache {
	if c == nil {
		return nil
	}
	return internalrepo.NewCacheRateStore(c, cfg.Cache.TTL)
}

// ProvideRateSource creates the central bank client behind a token bucket.
func ProvideRateSource(cfg *config.Config) *cbr.Client {
	hc := xhttp.NewClient(xhttp.WithTimeout(cfg.Currency.FetchTimeout))
	burst := cfg.Currency.RequestsPerSecond
	if burst < 1 {
		burst = 1
	}
	limiter := ratelimit.New(burst, cfg.Currency.RequestsPerSecond)
	return cbr.NewClient(hc, limiter, cfg.Currency.SourceURL)
}

// ProvideMonthlyBuilder returns nil unless currency.monthly_enabled is set.
func ProvideMonthlyBuilder(
	cfg *config.Config,
	source *cbr.Client,
	rates repository.RateCache,
	m repository.Metrics,
	log *applogger.Logger,
) *currency.MonthlyBuilder {
	if !cfg.Currency.MonthlyEnabled {
		return nil
	}
	return currency.NewMonthlyBuilder(source, rates, m, log, currency.MonthlyBuilderConfig{
		Base:         cfg.Engine.BaseCurrency,
		Threshold:    cfg.Currency.MaterialityThreshold,
		FetchTimeout: cfg.Currency.FetchTimeout,
	})
}

// ProvidePartitionStores spills partitions to CSV files when
// engine.partition_dir is set and keeps them in memory otherwise.
func ProvidePartitionStores(cfg *config.Config) repository.PartitionStoreFactory {
	if cfg.Engine.PartitionDir != "" {
		return internalrepo.CSVPartitionStores(cfg.Engine.PartitionDir)
	}
	return internalrepo.MemoryPartitionStores()
}

// ProvideRecordSource reads the configured CSV export.
func ProvideRecordSource(cfg *config.Config) repository.RecordSource {
	return internalrepo.NewCSVRecordSource(cfg.Engine.Input)
}

// ProvideStatsEngine creates the aggregation engine.
func ProvideStatsEngine(
	cfg *config.Config,
	source repository.RecordSource,
	monthly *currency.MonthlyBuilder,
	partitions repository.PartitionStoreFactory,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.StatsEngine {
	static := models.RateTable(cfg.Currency.Static)
	if len(static) == 0 {
		static = currency.DefaultRateTable()
	}
	return usecase.NewStatsEngine(source, monthly, partitions, m, log, usecase.EngineConfig{
		BaseCurrency:    cfg.Engine.BaseCurrency,
		Static:          static,
		CurrencyOptions: currency.Options{PreferMonthly: cfg.Currency.PreferMonthly},
		Workers:         cfg.Engine.Workers,
	})
}

// ProvideClickHouseClient connects only when sink.type is clickhouse.
func ProvideClickHouseClient(cfg *config.Config, log *applogger.Logger) (*pkgch.Client, func(), error) {
	if cfg.Sink.Type != "clickhouse" {
		return nil, func() {}, nil
	}
	opts := []pkgch.ClientOption{
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	}
	if cfg.ClickHouse.AsyncInsert {
		opts = append(opts, pkgch.WithAsyncInsert(cfg.ClickHouse.WaitForAsync))
	}
	client, err := pkgch.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideReportStorage creates ClickHouse storage and its schema.
func ProvideReportStorage(client *pkgch.Client) (repository.ReportStorage, error) {
	if client == nil {
		return nil, nil
	}
	storage := internalrepo.NewClickHouseReportStorage(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storage.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return storage, nil
}

// ProvideKafkaProducer connects only when sink.type is kafka.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Sink.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideReportPublisher creates Kafka publisher repository.
func ProvideReportPublisher(producer *pkgkafka.Producer) repository.ReportPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(producer)
}

// ProvideReportWriter prints reports to stdout.
func ProvideReportWriter() repository.ReportWriter {
	return internalrepo.NewConsoleSink(os.Stdout)
}

// ProvideReportProcessor creates the sink router.
func ProvideReportProcessor(
	cfg *config.Config,
	writer repository.ReportWriter,
	store repository.ReportStorage,
	pub repository.ReportPublisher,
	m repository.Metrics,
) *usecase.ReportProcessor {
	return usecase.NewReportProcessor(writer, store, pub, m, cfg.Sink.Type)
}

// ProvideStatsHandler creates the HTTP handler with health checks for the
// dependencies in use.
func ProvideStatsHandler(
	cfg *config.Config,
	log *applogger.Logger,
	engine *usecase.StatsEngine,
	store repository.ReportStorage,
	c cache.Service,
) *api.StatsEchoHandler {
	h := api.NewStatsEchoHandler(
		log,
		engine,
		ratelimit.New(cfg.Server.RateBurst, cfg.Server.RateLimit),
		cfg.Engine.ShareFloor,
		cfg.Server.RequestTimeout,
	)
	if store != nil {
		h.AddHealthCheck("clickhouse", store.Health)
	}
	if c != nil {
		h.AddHealthCheck("cache", func(ctx context.Context) error {
			_, err := c.Exists(ctx, "health")
			return err
		})
	}
	return h
}

// ProvideHTTPServer returns nil unless server.enabled is set.
func ProvideHTTPServer(cfg *config.Config, log *applogger.Logger, h *api.StatsEchoHandler) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return xhttp.NewServer(log, []xhttp.Handler{h},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	engine *usecase.StatsEngine,
	processor *usecase.ReportProcessor,
	srv *xhttp.Server,
) *server.App {
	return server.New(cfg, log, engine, processor, srv)
}
