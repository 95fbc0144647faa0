package service

import "VacancyPulse/internal/domain/models"

// CurrencyResolver converts an amount in some currency and month into the base currency.
type CurrencyResolver interface {
	Resolve(amount float64, code string, period models.YearMonth) (float64, error)
	Base() string
}
