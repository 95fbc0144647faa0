package usecase

import (
	"sort"

	"VacancyPulse/internal/domain/models"

	"github.com/shopspring/decimal"
)

const shareDecimals = 4

// CityRankings holds the two city tables of a report.
type CityRankings struct {
	BySalary []models.CityStat
	ByShare  []models.CityStat
}

type cityAcc struct {
	sum   float64
	count int
}

// AggregateCities groups records by city over the whole dataset. Cities whose
// exact count/total ratio is below shareFloor are dropped before ranking; the
// stored Share is rounded. topN <= 0 keeps every retained city.
func AggregateCities(records []models.Vacancy, shareFloor float64, topN int) CityRankings {
	if len(records) == 0 {
		return CityRankings{BySalary: []models.CityStat{}, ByShare: []models.CityStat{}}
	}

	var order []string
	acc := make(map[string]*cityAcc)
	for _, v := range records {
		a, ok := acc[v.City]
		if !ok {
			a = &cityAcc{}
			acc[v.City] = a
			order = append(order, v.City)
		}
		a.sum += v.Salary
		a.count++
	}

	total := decimal.NewFromInt(int64(len(records)))
	floor := decimal.NewFromFloat(shareFloor)
	retained := make([]models.CityStat, 0, len(order))
	for _, city := range order {
		a := acc[city]
		count := decimal.NewFromInt(int64(a.count))
		if count.Div(total).LessThan(floor) {
			continue
		}
		share, _ := count.DivRound(total, shareDecimals).Float64()
		retained = append(retained, models.CityStat{
			City:       city,
			MeanSalary: floorMean(a.sum, a.count),
			Count:      a.count,
			Share:      share,
		})
	}

	bySalary := append(make([]models.CityStat, 0, len(retained)), retained...)
	sort.SliceStable(bySalary, func(i, j int) bool { return bySalary[i].MeanSalary > bySalary[j].MeanSalary })

	byShare := append(make([]models.CityStat, 0, len(retained)), retained...)
	sort.SliceStable(byShare, func(i, j int) bool { return byShare[i].Share > byShare[j].Share })

	return CityRankings{
		BySalary: truncate(bySalary, topN),
		ByShare:  truncate(byShare, topN),
	}
}

func truncate(stats []models.CityStat, n int) []models.CityStat {
	if n > 0 && len(stats) > n {
		return stats[:n]
	}
	return stats
}
