package usecase

import (
	"sort"

	"VacancyPulse/internal/domain/models"
)

// Partitions groups vacancies by publication year.
type Partitions map[int][]models.Vacancy

// Partition splits records by Year. Input order is kept inside each partition.
func Partition(records []models.Vacancy) Partitions {
	parts := make(Partitions)
	for _, v := range records {
		parts[v.Year] = append(parts[v.Year], v)
	}
	return parts
}

// Years returns the partition keys in ascending order.
func (p Partitions) Years() []int {
	years := make([]int, 0, len(p))
	for y := range p {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Size returns the total number of records across partitions.
func (p Partitions) Size() int {
	n := 0
	for _, recs := range p {
		n += len(recs)
	}
	return n
}
