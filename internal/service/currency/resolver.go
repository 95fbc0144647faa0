package currency

import (
	"VacancyPulse/internal/domain/models"
	"VacancyPulse/internal/domain/service"
)

// Options tune resolution order.
type Options struct {
	// PreferMonthly consults monthly rates before the static table.
	PreferMonthly bool
}

// Resolver converts amounts into the base currency. It owns copies of its
// tables and is safe for concurrent use.
type Resolver struct {
	base    string
	static  models.RateTable
	monthly *models.MonthlyRates
	opts    Options
}

var _ service.CurrencyResolver = (*Resolver)(nil)

// NewResolver builds a resolver for one run. monthly may be nil.
func NewResolver(base string, static models.RateTable, monthly *models.MonthlyRates, opts Options) *Resolver {
	return &Resolver{
		base:    base,
		static:  static.Clone(),
		monthly: monthly,
		opts:    opts,
	}
}

// Base returns the base currency code.
func (r *Resolver) Base() string { return r.base }

// Resolve returns amount expressed in the base currency.
func (r *Resolver) Resolve(amount float64, code string, period models.YearMonth) (float64, error) {
	if code == r.base {
		return amount, nil
	}

	if r.opts.PreferMonthly {
		if f, ok := r.monthly.Lookup(code, period); ok {
			return amount * f, nil
		}
		if f, ok := r.static[code]; ok {
			return amount * f, nil
		}
	} else {
		if f, ok := r.static[code]; ok {
			return amount * f, nil
		}
		if f, ok := r.monthly.Lookup(code, period); ok {
			return amount * f, nil
		}
	}

	return 0, &models.CurrencyUnresolvedError{Code: code, Period: period}
}
