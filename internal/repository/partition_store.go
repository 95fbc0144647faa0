package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
)

// MemoryPartitionStore keeps partitions in process memory.
type MemoryPartitionStore struct {
	mu    sync.RWMutex
	parts map[int][]models.Vacancy
}

var _ repository.PartitionStore = (*MemoryPartitionStore)(nil)

// NewMemoryPartitionStore creates an empty store.
func NewMemoryPartitionStore() *MemoryPartitionStore {
	return &MemoryPartitionStore{parts: make(map[int][]models.Vacancy)}
}

// MemoryPartitionStores returns a factory of fresh memory stores.
func MemoryPartitionStores() repository.PartitionStoreFactory {
	return func(string) (repository.PartitionStore, error) {
		return NewMemoryPartitionStore(), nil
	}
}

func (s *MemoryPartitionStore) Save(_ context.Context, year int, records []models.Vacancy) error {
	cp := append([]models.Vacancy(nil), records...)
	s.mu.Lock()
	s.parts[year] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryPartitionStore) Load(_ context.Context, year int) ([]models.Vacancy, error) {
	s.mu.RLock()
	recs, ok := s.parts[year]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("partition %d not found", year)
	}
	return append([]models.Vacancy(nil), recs...), nil
}

func (s *MemoryPartitionStore) Cleanup() error {
	s.mu.Lock()
	s.parts = make(map[int][]models.Vacancy)
	s.mu.Unlock()
	return nil
}

var partitionHeader = []string{"name", "salary", "area_name", "published_year", "period"}

// CSVPartitionStore writes one year_number_YYYY.csv file per partition.
type CSVPartitionStore struct {
	dir string
}

var _ repository.PartitionStore = (*CSVPartitionStore)(nil)

// NewCSVPartitionStore creates dir if needed.
func NewCSVPartitionStore(dir string) (*CSVPartitionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create partition dir: %w", err)
	}
	return &CSVPartitionStore{dir: dir}, nil
}

// CSVPartitionStores returns a factory placing each run under root/<runID>.
func CSVPartitionStores(root string) repository.PartitionStoreFactory {
	return func(runID string) (repository.PartitionStore, error) {
		return NewCSVPartitionStore(filepath.Join(root, runID))
	}
}

// Dir returns the directory holding the partition files.
func (s *CSVPartitionStore) Dir() string { return s.dir }

func (s *CSVPartitionStore) path(year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("year_number_%d.csv", year))
}

func (s *CSVPartitionStore) Save(ctx context.Context, year int, records []models.Vacancy) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Create(s.path(year))
	if err != nil {
		return fmt.Errorf("create partition %d: %w", year, err)
	}

	if err := writePartition(f, records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write partition %d: %w", year, err)
	}
	return f.Close()
}

// writePartition stops at the first failed row.
func writePartition(out io.Writer, records []models.Vacancy) error {
	w := csv.NewWriter(out)
	if err := w.Write(partitionHeader); err != nil {
		return err
	}
	for _, v := range records {
		if err := w.Write([]string{
			v.Title,
			strconv.FormatFloat(v.Salary, 'g', -1, 64),
			v.City,
			strconv.Itoa(v.Year),
			v.Period.String(),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVPartitionStore) Load(ctx context.Context, year int) ([]models.Vacancy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(year))
	if err != nil {
		return nil, fmt.Errorf("open partition %d: %w", year, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read partition %d: %w", year, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("partition %d has no header", year)
	}

	out := make([]models.Vacancy, 0, len(rows)-1)
	for i, row := range rows[1:] {
		v, err := parsePartitionRow(row)
		if err != nil {
			return nil, fmt.Errorf("partition %d row %d: %w", year, i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Cleanup removes the store directory.
func (s *CSVPartitionStore) Cleanup() error {
	return os.RemoveAll(s.dir)
}

func parsePartitionRow(row []string) (models.Vacancy, error) {
	if len(row) != len(partitionHeader) {
		return models.Vacancy{}, fmt.Errorf("expected %d fields, got %d", len(partitionHeader), len(row))
	}
	salary, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return models.Vacancy{}, fmt.Errorf("salary: %w", err)
	}
	year, err := strconv.Atoi(row[3])
	if err != nil {
		return models.Vacancy{}, fmt.Errorf("year: %w", err)
	}
	// Month 0 marks an unparsable month and is kept as is.
	ys, ms, ok := strings.Cut(row[4], "-")
	if !ok {
		return models.Vacancy{}, fmt.Errorf("period %q", row[4])
	}
	py, err1 := strconv.Atoi(ys)
	pm, err2 := strconv.Atoi(ms)
	if err1 != nil || err2 != nil {
		return models.Vacancy{}, fmt.Errorf("period %q", row[4])
	}
	return models.Vacancy{
		Title:  row[0],
		Salary: salary,
		City:   row[2],
		Year:   year,
		Period: models.YearMonth{Year: py, Month: pm},
	}, nil
}
