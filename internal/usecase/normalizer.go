package usecase

import (
	"fmt"
	"math"
	"strconv"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/service"
	"VacancyPulse/pkg/util"
)

// Normalizer turns raw rows into vacancies with a base-currency salary.
type Normalizer struct {
	resolver service.CurrencyResolver
	width    int
	idx      struct {
		name, lo, hi, currency, city, published int
	}
}

// NewNormalizer maps the required columns of header. A missing column is a
// configuration error, not a per-row rejection.
func NewNormalizer(header []string, resolver service.CurrencyResolver) (*Normalizer, error) {
	pos := make(map[string]int, len(header))
	for i, col := range header {
		if _, dup := pos[col]; !dup {
			pos[col] = i
		}
	}
	for _, col := range models.RequiredColumns {
		if _, ok := pos[col]; !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingColumn, col)
		}
	}

	n := &Normalizer{resolver: resolver, width: len(header)}
	n.idx.name = pos[models.ColName]
	n.idx.lo = pos[models.ColSalaryLo]
	n.idx.hi = pos[models.ColSalaryHi]
	n.idx.currency = pos[models.ColCurrency]
	n.idx.city = pos[models.ColCity]
	n.idx.published = pos[models.ColPublished]
	return n, nil
}

// Normalize validates raw and converts its salary midpoint into the base
// currency. Structural problems yield *models.RecordRejectedError; resolver
// errors are returned unchanged.
func (n *Normalizer) Normalize(raw models.RawRecord) (models.Vacancy, error) {
	if len(raw.Fields) != n.width {
		return models.Vacancy{}, &models.RecordRejectedError{
			Line:   raw.Line,
			Reason: fmt.Sprintf("field count %d, header has %d", len(raw.Fields), n.width),
		}
	}
	for _, f := range raw.Fields {
		if f == "" {
			return models.Vacancy{}, &models.RecordRejectedError{Line: raw.Line, Reason: "empty field"}
		}
	}

	lo, err := strconv.ParseFloat(raw.Fields[n.idx.lo], 64)
	if err != nil {
		return models.Vacancy{}, &models.RecordRejectedError{Line: raw.Line, Reason: "salary_from", Err: err}
	}
	hi, err := strconv.ParseFloat(raw.Fields[n.idx.hi], 64)
	if err != nil {
		return models.Vacancy{}, &models.RecordRejectedError{Line: raw.Line, Reason: "salary_to", Err: err}
	}

	published := raw.Fields[n.idx.published]
	year, err := util.LeadingYear(published)
	if err != nil {
		return models.Vacancy{}, &models.RecordRejectedError{Line: raw.Line, Reason: "published_at", Err: err}
	}
	month, _ := util.LeadingMonth(published)
	period := models.YearMonth{Year: year, Month: month}

	salary, err := n.resolver.Resolve(math.Floor((lo+hi)/2), raw.Fields[n.idx.currency], period)
	if err != nil {
		return models.Vacancy{}, err
	}

	return models.Vacancy{
		Title:  raw.Fields[n.idx.name],
		Salary: salary,
		City:   raw.Fields[n.idx.city],
		Year:   year,
		Period: period,
	}, nil
}
