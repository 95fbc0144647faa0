package currency

import "VacancyPulse/internal/domain/models"

// DefaultBase is the base currency of the reference table.
const DefaultBase = "RUR"

// DefaultRateTable returns the reference factors into roubles.
func DefaultRateTable() models.RateTable {
	return models.RateTable{
		"AZN": 35.68,
		"BYR": 23.91,
		"EUR": 59.90,
		"GEL": 21.74,
		"KGS": 0.76,
		"KZT": 0.13,
		"RUR": 1,
		"UAH": 1.64,
		"USD": 60.66,
		"UZS": 0.0055,
	}
}
