package usecase

import (
	"errors"
	"testing"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/service/currency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeader = []string{"name", "salary_from", "salary_to", "salary_currency", "area_name", "published_at"}

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := NewNormalizer(testHeader, currency.NewResolver("RUR", currency.DefaultRateTable(), nil, currency.Options{}))
	require.NoError(t, err)
	return n
}

func row(line int, fields ...string) models.RawRecord {
	return models.RawRecord{Line: line, Fields: fields}
}

func TestNormalizeBaseCurrencyMidpoint(t *testing.T) {
	n := newTestNormalizer(t)

	v, err := n.Normalize(row(2, "Engineer", "100", "201", "RUR", "Moscow", "2020-04-01T10:00:00+0300"))
	require.NoError(t, err)

	assert.Equal(t, models.Vacancy{
		Title:  "Engineer",
		Salary: 150,
		City:   "Moscow",
		Year:   2020,
		Period: models.YearMonth{Year: 2020, Month: 4},
	}, v)
}

func TestNormalizeEqualBoundsRoundTrip(t *testing.T) {
	n := newTestNormalizer(t)

	v, err := n.Normalize(row(2, "Analyst", "50.7", "50.7", "RUR", "Moscow", "2020-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 50.0, v.Salary)
}

func TestNormalizeConvertsForeignCurrency(t *testing.T) {
	n := newTestNormalizer(t)

	v, err := n.Normalize(row(2, "Dev", "1000", "2000", "EUR", "Berlin", "2019-11-02"))
	require.NoError(t, err)
	assert.InDelta(t, 1500*59.90, v.Salary, 1e-6)
}

func TestNormalizeRejects(t *testing.T) {
	n := newTestNormalizer(t)

	cases := map[string]models.RawRecord{
		"field count":  row(3, "Dev", "1", "2", "RUR", "Moscow"),
		"empty field":  row(4, "Dev", "", "2", "RUR", "Moscow", "2020-01-01"),
		"empty city":   row(5, "Dev", "1", "2", "RUR", "", "2020-01-01"),
		"bad salary":   row(6, "Dev", "abc", "2", "RUR", "Moscow", "2020-01-01"),
		"bad year":     row(7, "Dev", "1", "2", "RUR", "Moscow", "20x0-01-01"),
		"short year":   row(8, "Dev", "1", "2", "RUR", "Moscow", "20"),
		"extra fields": row(9, "Dev", "1", "2", "RUR", "Moscow", "2020-01-01", "x"),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := n.Normalize(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrRecordRejected))

			var re *models.RecordRejectedError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, raw.Line, re.Line)
		})
	}
}

func TestNormalizeEmptyFieldCheckedBeforeParsing(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.Normalize(row(2, "Dev", "abc", "2", "RUR", "Moscow", ""))
	var re *models.RecordRejectedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "empty field", re.Reason)
}

func TestNormalizeUnresolvedCurrencyIsDistinct(t *testing.T) {
	n := newTestNormalizer(t)

	_, err := n.Normalize(row(2, "Dev", "100", "200", "XYZ", "Moscow", "2020-01-01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCurrencyUnresolved))
	assert.False(t, errors.Is(err, models.ErrRecordRejected))
}

func TestNormalizeMalformedMonthKeepsYear(t *testing.T) {
	n := newTestNormalizer(t)

	v, err := n.Normalize(row(2, "Dev", "100", "200", "RUR", "Moscow", "2021"))
	require.NoError(t, err)
	assert.Equal(t, 2021, v.Year)
	assert.Equal(t, 0, v.Period.Month)
}

func TestNewNormalizerMissingColumn(t *testing.T) {
	_, err := NewNormalizer([]string{"name", "salary_from", "salary_to"}, currency.NewResolver("RUR", nil, nil, currency.Options{}))
	assert.ErrorIs(t, err, models.ErrMissingColumn)
}

func TestNormalizerFollowsHeaderOrder(t *testing.T) {
	header := []string{"published_at", "area_name", "name", "salary_currency", "salary_to", "salary_from", "key_skills"}
	n, err := NewNormalizer(header, currency.NewResolver("RUR", currency.DefaultRateTable(), nil, currency.Options{}))
	require.NoError(t, err)

	v, err := n.Normalize(row(2, "2018-03-01", "Omsk", "Dev", "RUR", "300", "100", "Go"))
	require.NoError(t, err)
	assert.Equal(t, "Dev", v.Title)
	assert.Equal(t, "Omsk", v.City)
	assert.Equal(t, 200.0, v.Salary)
}
