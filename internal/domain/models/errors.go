package models

import (
	"errors"
	"fmt"
)

var (
	ErrRecordRejected     = errors.New("record rejected")
	ErrCurrencyUnresolved = errors.New("currency unresolved")
	ErrRateFetch          = errors.New("rate fetch failed")
	ErrPartitionTask      = errors.New("partition task failed")
	ErrDuplicateYear      = errors.New("duplicate year partition")
	ErrMissingColumn      = errors.New("missing required column")
	ErrEmptyDataset       = errors.New("no accepted records")
)

// RecordRejectedError reports a structurally invalid input row.
type RecordRejectedError struct {
	Line   int
	Reason string
	Err    error
}

func (e *RecordRejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d rejected: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d rejected: %s", e.Line, e.Reason)
}

func (e *RecordRejectedError) Is(target error) bool { return target == ErrRecordRejected }

func (e *RecordRejectedError) Unwrap() error { return e.Err }

// CurrencyUnresolvedError means neither the static table nor the monthly rates know the code.
type CurrencyUnresolvedError struct {
	Code   string
	Period YearMonth
}

func (e *CurrencyUnresolvedError) Error() string {
	return fmt.Sprintf("no rate for %s in %s", e.Code, e.Period)
}

func (e *CurrencyUnresolvedError) Is(target error) bool { return target == ErrCurrencyUnresolved }

// RateFetchError reports a failed external lookup for one period.
type RateFetchError struct {
	Period YearMonth
	Err    error
}

func (e *RateFetchError) Error() string {
	return fmt.Sprintf("fetch rates for %s: %v", e.Period, e.Err)
}

func (e *RateFetchError) Is(target error) bool { return target == ErrRateFetch }

func (e *RateFetchError) Unwrap() error { return e.Err }

// PartitionTaskError reports a failed per-year aggregation task. It is fatal for the run.
type PartitionTaskError struct {
	Year int
	Err  error
}

func (e *PartitionTaskError) Error() string {
	return fmt.Sprintf("partition %d: %v", e.Year, e.Err)
}

func (e *PartitionTaskError) Is(target error) bool { return target == ErrPartitionTask }

func (e *PartitionTaskError) Unwrap() error { return e.Err }
