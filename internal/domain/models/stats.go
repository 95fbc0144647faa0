package models

import "time"

// YearStat holds the per-year salary and count series, overall and for the vacancy filter.
type YearStat struct {
	Year               int `json:"year"`
	MeanSalaryAll      int `json:"mean_salary_all"`
	CountAll           int `json:"count_all"`
	MeanSalaryFiltered int `json:"mean_salary_filtered"`
	CountFiltered      int `json:"count_filtered"`
}

// CityStat is one city entry of a ranking. Share is count/total rounded to 4 decimals.
type CityStat struct {
	City       string  `json:"city"`
	MeanSalary int     `json:"mean_salary"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"`
}

// Quality counts what happened to the input, separately from the statistics.
type Quality struct {
	Total             int `json:"total"`
	Accepted          int `json:"accepted"`
	Rejected          int `json:"rejected"`
	Unresolved        int `json:"unresolved"`
	RateFetchFailures int `json:"rate_fetch_failures"`
}

// YearValue is one point of a year series.
type YearValue struct {
	Year  int `json:"year"`
	Value int `json:"value"`
}

// Report is the result of one engine run, handed to sinks.
type Report struct {
	RunID         string     `json:"run_id"`
	Vacancy       string     `json:"vacancy"`
	BaseCurrency  string     `json:"base_currency"`
	GeneratedAt   time.Time  `json:"generated_at"`
	Years         []YearStat `json:"years"`
	SalaryRanking []CityStat `json:"salary_ranking"`
	ShareRanking  []CityStat `json:"share_ranking"`
	Quality       Quality    `json:"quality"`
}

// SalaryByYear returns the mean salary series over all vacancies.
func (r *Report) SalaryByYear() []YearValue {
	return r.series(func(s YearStat) int { return s.MeanSalaryAll })
}

// CountByYear returns the vacancy count series.
func (r *Report) CountByYear() []YearValue {
	return r.series(func(s YearStat) int { return s.CountAll })
}

// FilteredSalaryByYear returns the mean salary series for the selected vacancy.
func (r *Report) FilteredSalaryByYear() []YearValue {
	return r.series(func(s YearStat) int { return s.MeanSalaryFiltered })
}

// FilteredCountByYear returns the count series for the selected vacancy.
func (r *Report) FilteredCountByYear() []YearValue {
	return r.series(func(s YearStat) int { return s.CountFiltered })
}

func (r *Report) series(pick func(YearStat) int) []YearValue {
	out := make([]YearValue, 0, len(r.Years))
	for _, s := range r.Years {
		out = append(out, YearValue{Year: s.Year, Value: pick(s)})
	}
	return out
}

// StatsRequest is the query of GET /api/stats. An absent share_floor means
// the configured default.
type StatsRequest struct {
	Vacancy    string  `query:"vacancy" json:"vacancy"`
	TopN       int     `query:"top_n" json:"top_n" default:"10" validate:"gte=1,lte=100"`
	ShareFloor float64 `query:"share_floor" json:"share_floor" validate:"gte=0,lte=1"`
}
