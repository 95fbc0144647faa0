package models

import "fmt"

// Column names of the vacancy export.
const (
	ColName      = "name"
	ColSalaryLo  = "salary_from"
	ColSalaryHi  = "salary_to"
	ColCurrency  = "salary_currency"
	ColCity      = "area_name"
	ColPublished = "published_at"
)

// RequiredColumns lists the header columns the normalizer needs.
var RequiredColumns = []string{ColName, ColSalaryLo, ColSalaryHi, ColCurrency, ColCity, ColPublished}

// RawRecord is one data row of the export, untyped until normalized.
type RawRecord struct {
	Line   int
	Fields []string
}

// YearMonth identifies a calendar month, the bucket for monthly exchange rates.
type YearMonth struct {
	Year  int
	Month int
}

// String renders the period as YYYY-MM.
func (p YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Valid reports whether the month is in 1..12.
func (p YearMonth) Valid() bool {
	return p.Month >= 1 && p.Month <= 12
}

// Next returns the following month.
func (p YearMonth) Next() YearMonth {
	if p.Month >= 12 {
		return YearMonth{Year: p.Year + 1, Month: 1}
	}
	return YearMonth{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than o.
func (p YearMonth) Before(o YearMonth) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// Vacancy is a normalized vacancy record; Salary is in the base currency.
type Vacancy struct {
	Title  string
	Salary float64
	City   string
	Year   int
	Period YearMonth
}

// RateTable maps a currency code to its factor into the base currency.
type RateTable map[string]float64

// Clone returns an independent copy of the table.
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

type rateKey struct {
	code   string
	period YearMonth
}

// MonthlyRates is a read-only (currency, month) -> factor lookup.
// Build it with MonthlyRatesBuilder; after Build it is never mutated.
type MonthlyRates struct {
	m map[rateKey]float64
}

// Lookup returns the factor for code in period.
func (r *MonthlyRates) Lookup(code string, period YearMonth) (float64, bool) {
	if r == nil {
		return 0, false
	}
	f, ok := r.m[rateKey{code: code, period: period}]
	return f, ok
}

// Len returns the number of (currency, month) entries.
func (r *MonthlyRates) Len() int {
	if r == nil {
		return 0
	}
	return len(r.m)
}

// MonthlyRatesBuilder accumulates entries for a MonthlyRates table.
type MonthlyRatesBuilder struct {
	m map[rateKey]float64
}

// NewMonthlyRatesBuilder returns an empty builder.
func NewMonthlyRatesBuilder() *MonthlyRatesBuilder {
	return &MonthlyRatesBuilder{m: make(map[rateKey]float64)}
}

// Set records the factor for code in period.
func (b *MonthlyRatesBuilder) Set(code string, period YearMonth, factor float64) {
	b.m[rateKey{code: code, period: period}] = factor
}

// Build freezes the builder. The builder must not be used afterwards.
func (b *MonthlyRatesBuilder) Build() *MonthlyRates {
	m := b.m
	b.m = nil
	return &MonthlyRates{m: m}
}
