package repository

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/repository"
)

// Series titles, in print order.
const (
	titleSalaryByYear         = "Динамика уровня зарплат по годам: "
	titleCountByYear          = "Динамика количества вакансий по годам: "
	titleFilteredSalaryByYear = "Динамика уровня зарплат по годам для выбранной профессии: "
	titleFilteredCountByYear  = "Динамика количества вакансий по годам для выбранной профессии: "
	titleSalaryByCity         = "Уровень зарплат по городам (в порядке убывания): "
	titleShareByCity          = "Доля вакансий по городам (в порядке убывания): "
)

// ConsoleSink prints the six series of a report as text lines.
type ConsoleSink struct {
	w io.Writer
}

var _ repository.ReportWriter = (*ConsoleSink)(nil)

// NewConsoleSink creates a sink writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Write(_ context.Context, r *models.Report) error {
	lines := []string{
		titleSalaryByYear + yearSeries(r.SalaryByYear()),
		titleCountByYear + yearSeries(r.CountByYear()),
		titleFilteredSalaryByYear + yearSeries(r.FilteredSalaryByYear()),
		titleFilteredCountByYear + yearSeries(r.FilteredCountByYear()),
		titleSalaryByCity + citySeries(r.SalaryRanking, func(c models.CityStat) string { return strconv.Itoa(c.MeanSalary) }),
		titleShareByCity + citySeries(r.ShareRanking, func(c models.CityStat) string {
			return strconv.FormatFloat(c.Share, 'f', -1, 64)
		}),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(s.w, l); err != nil {
			return err
		}
	}

	q := r.Quality
	_, err := fmt.Fprintf(s.w, "Записей: %d, принято: %d, отклонено: %d, без курса: %d, неудачных запросов курсов: %d\n",
		q.Total, q.Accepted, q.Rejected, q.Unresolved, q.RateFetchFailures)
	return err
}

func yearSeries(vals []models.YearValue) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d: %d", v.Year, v.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func citySeries(stats []models.CityStat, value func(models.CityStat) string) string {
	parts := make([]string, len(stats))
	for i, c := range stats {
		parts[i] = fmt.Sprintf("'%s': %s", c.City, value(c))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
