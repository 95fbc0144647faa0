package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
)

const utf8BOM = "\ufeff"

// CSVRecordSource reads a vacancy export from a CSV file.
type CSVRecordSource struct {
	path string
}

var _ repository.RecordSource = (*CSVRecordSource)(nil)

// NewCSVRecordSource creates a source for the file at path.
func NewCSVRecordSource(path string) *CSVRecordSource {
	return &CSVRecordSource{path: path}
}

// Load reads the whole file.
func (s *CSVRecordSource) Load(ctx context.Context) ([]string, []models.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	return ReadRecords(ctx, f)
}

// ReadRecords parses a header line and data rows. Rows keep whatever field
// count they have so that shape checks happen in one place downstream.
func ReadRecords(ctx context.Context, r io.Reader) ([]string, []models.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("read header: %w", models.ErrEmptyDataset)
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var records []models.RawRecord
	for i := 0; ; i++ {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, models.RawRecord{Line: line, Fields: fields})
	}
	return header, records, nil
}
