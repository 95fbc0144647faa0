package repository

import (
	"context"
	"fmt"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
)

// Rankings as stored in the city_stats table.
const (
	RankingSalary = "salary"
	RankingShare  = "share"
)

// ReportSchema creates the tables written by ClickHouseReportStorage.
var ReportSchema = []string{
	`CREATE TABLE IF NOT EXISTS year_stats (
		run_id               String,
		generated_at         DateTime,
		vacancy              String,
		year                 UInt16,
		mean_salary_all      Int64,
		count_all            UInt32,
		mean_salary_filtered Int64,
		count_filtered       UInt32
	) ENGINE = MergeTree ORDER BY (run_id, year)`,
	`CREATE TABLE IF NOT EXISTS city_stats (
		run_id       String,
		generated_at DateTime,
		ranking      LowCardinality(String),
		position     UInt16,
		city         String,
		mean_salary  Int64,
		count        UInt32,
		share        Float64
	) ENGINE = MergeTree ORDER BY (run_id, ranking, position)`,
}

const (
	insertYearStats = "INSERT INTO year_stats (run_id, generated_at, vacancy, year, mean_salary_all, count_all, mean_salary_filtered, count_filtered)"
	insertCityStats = "INSERT INTO city_stats (run_id, generated_at, ranking, position, city, mean_salary, count, share)"
)

// BatchExecutor is the part of pkg/clickhouse.Client the storage needs.
type BatchExecutor interface {
	InitSchema(ctx context.Context, stmts []string) error
	InsertBatch(ctx context.Context, query string, rows [][]any) error
	Health(ctx context.Context) error
}

// ClickHouseReportStorage implements ReportStorage for ClickHouse.
type ClickHouseReportStorage struct {
	db BatchExecutor
}

var _ repository.ReportStorage = (*ClickHouseReportStorage)(nil)

// NewClickHouseReportStorage creates ClickHouse storage.
func NewClickHouseReportStorage(db BatchExecutor) *ClickHouseReportStorage {
	return &ClickHouseReportStorage{db: db}
}

func (s *ClickHouseReportStorage) Init(ctx context.Context) error {
	return s.db.InitSchema(ctx, ReportSchema)
}

// Store writes every year and both rankings keyed by run id.
func (s *ClickHouseReportStorage) Store(ctx context.Context, r *models.Report) error {
	years := make([][]any, 0, len(r.Years))
	for _, y := range r.Years {
		years = append(years, []any{
			r.RunID, r.GeneratedAt, r.Vacancy,
			uint16(y.Year), int64(y.MeanSalaryAll), uint32(y.CountAll),
			int64(y.MeanSalaryFiltered), uint32(y.CountFiltered),
		})
	}
	if err := s.db.InsertBatch(ctx, insertYearStats, years); err != nil {
		return fmt.Errorf("insert year_stats: %w", err)
	}

	cities := make([][]any, 0, len(r.SalaryRanking)+len(r.ShareRanking))
	cities = appendCityRows(cities, r, RankingSalary, r.SalaryRanking)
	cities = appendCityRows(cities, r, RankingShare, r.ShareRanking)
	if err := s.db.InsertBatch(ctx, insertCityStats, cities); err != nil {
		return fmt.Errorf("insert city_stats: %w", err)
	}
	return nil
}

func appendCityRows(rows [][]any, r *models.Report, ranking string, stats []models.CityStat) [][]any {
	for i, c := range stats {
		rows = append(rows, []any{
			r.RunID, r.GeneratedAt, ranking, uint16(i + 1),
			c.City, int64(c.MeanSalary), uint32(c.Count), c.Share,
		})
	}
	return rows
}

func (s *ClickHouseReportStorage) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *ClickHouseReportStorage) Close() error {
	return nil // Managed by pkg
}

// MessageProducer is the part of pkg/kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, key []byte, value interface{}) error
	Close() error
}

// KafkaReportPublisher implements ReportPublisher for Kafka.
type KafkaReportPublisher struct {
	producer MessageProducer
}

var _ repository.ReportPublisher = (*KafkaReportPublisher)(nil)

// NewKafkaReportPublisher creates Kafka publisher.
func NewKafkaReportPublisher(producer MessageProducer) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer}
}

// Publish sends the report as JSON keyed by its vacancy filter, so reports
// for one filter land on one partition.
func (p *KafkaReportPublisher) Publish(ctx context.Context, r *models.Report) error {
	return p.producer.Publish(ctx, []byte(r.Vacancy), r)
}

func (p *KafkaReportPublisher) Close() error {
	return p.producer.Close()
}
