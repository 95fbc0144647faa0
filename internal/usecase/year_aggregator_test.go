package usecase

import (
	"testing"

	"VacancyPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vac(title string, salary float64, city string, year int) models.Vacancy {
	return models.Vacancy{Title: title, Salary: salary, City: city, Year: year, Period: models.YearMonth{Year: year, Month: 1}}
}

func TestAggregatePartitionScenario(t *testing.T) {
	recs := []models.Vacancy{
		vac("Engineer", 150, "Moscow", 2020),
		vac("Analyst", 50, "Moscow", 2020),
	}

	res, err := AggregatePartition(2020, recs, "Analyst")
	require.NoError(t, err)
	assert.Equal(t, models.YearStat{
		Year:               2020,
		MeanSalaryAll:      100,
		CountAll:           2,
		MeanSalaryFiltered: 50,
		CountFiltered:      1,
	}, res.Stat)
}

func TestAggregatePartitionNoMatch(t *testing.T) {
	res, err := AggregatePartition(2021, []models.Vacancy{vac("Engineer", 101, "Omsk", 2021)}, "analyst")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stat.MeanSalaryFiltered)
	assert.Equal(t, 0, res.Stat.CountFiltered)
	assert.Equal(t, 101, res.Stat.MeanSalaryAll)
}

func TestAggregatePartitionEmptyFilterMatchesAll(t *testing.T) {
	recs := []models.Vacancy{vac("a", 1, "X", 2019), vac("b", 2, "Y", 2019)}
	res, err := AggregatePartition(2019, recs, "")
	require.NoError(t, err)
	assert.Equal(t, res.Stat.CountAll, res.Stat.CountFiltered)
	assert.Equal(t, 1, res.Stat.MeanSalaryFiltered)
}

func TestAggregatePartitionMalformed(t *testing.T) {
	_, err := AggregatePartition(2020, nil, "")
	assert.ErrorIs(t, err, errMalformedPartition)

	_, err = AggregatePartition(2020, []models.Vacancy{vac("a", 1, "X", 2019)}, "")
	assert.ErrorIs(t, err, errMalformedPartition)
}

func TestMergeYearsByKey(t *testing.T) {
	out, err := MergeYears([]YearResult{
		{Year: 2022, Stat: models.YearStat{Year: 2022, CountAll: 3}},
		{Year: 2019, Stat: models.YearStat{Year: 2019, CountAll: 1}},
		{Year: 2020, Stat: models.YearStat{Year: 2020, CountAll: 2}},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []int{2019, 2020, 2022}, []int{out[0].Year, out[1].Year, out[2].Year})
	assert.Equal(t, 3, out[2].CountAll)
}

func TestMergeYearsDuplicate(t *testing.T) {
	_, err := MergeYears([]YearResult{{Year: 2020}, {Year: 2020}})
	assert.ErrorIs(t, err, models.ErrDuplicateYear)
}

func TestPartitionKeepsOrderAndSortsYears(t *testing.T) {
	recs := []models.Vacancy{
		vac("a", 1, "X", 2021),
		vac("b", 2, "X", 2019),
		vac("c", 3, "X", 2021),
	}
	parts := Partition(recs)

	assert.Equal(t, []int{2019, 2021}, parts.Years())
	assert.Equal(t, "a", parts[2021][0].Title)
	assert.Equal(t, "c", parts[2021][1].Title)
	assert.Equal(t, len(recs), parts.Size())
}
