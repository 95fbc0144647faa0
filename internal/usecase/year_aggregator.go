package usecase

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"VacancyPulse/internal/domain/models"
)

var errMalformedPartition = errors.New("malformed partition")

// YearResult is the output of one partition task.
type YearResult struct {
	Year int
	Stat models.YearStat
}

// AggregatePartition computes the statistics of one year. filter is matched
// as a case-sensitive substring of the title; an empty filter matches all.
func AggregatePartition(year int, records []models.Vacancy, filter string) (YearResult, error) {
	if len(records) == 0 {
		return YearResult{}, fmt.Errorf("%w: year %d is empty", errMalformedPartition, year)
	}

	var (
		sumAll, sumFiltered float64
		nFiltered           int
	)
	for _, v := range records {
		if v.Year != year {
			return YearResult{}, fmt.Errorf("%w: record of %d in partition %d", errMalformedPartition, v.Year, year)
		}
		sumAll += v.Salary
		if strings.Contains(v.Title, filter) {
			sumFiltered += v.Salary
			nFiltered++
		}
	}

	stat := models.YearStat{
		Year:          year,
		MeanSalaryAll: floorMean(sumAll, len(records)),
		CountAll:      len(records),
		CountFiltered: nFiltered,
	}
	if nFiltered > 0 {
		stat.MeanSalaryFiltered = floorMean(sumFiltered, nFiltered)
	}
	return YearResult{Year: year, Stat: stat}, nil
}

// MergeYears joins partition results by year, ascending.
func MergeYears(results []YearResult) ([]models.YearStat, error) {
	byYear := make(map[int]models.YearStat, len(results))
	for _, r := range results {
		if _, dup := byYear[r.Year]; dup {
			return nil, fmt.Errorf("%w: %d", models.ErrDuplicateYear, r.Year)
		}
		byYear[r.Year] = r.Stat
	}

	out := make([]models.YearStat, 0, len(byYear))
	for _, s := range byYear {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out, nil
}

func floorMean(sum float64, n int) int {
	return int(math.Floor(sum / float64(n)))
}
