package util

import (
	"fmt"
	"strconv"
)

// LeadingYear parses the first four characters of a timestamp such as
// "2022-07-05T18:19:30+0300" as a year.
func LeadingYear(s string) (int, error) {
	if len(s) < 4 {
		return 0, fmt.Errorf("timestamp %q too short for a year", s)
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("timestamp %q: non-numeric year", s)
		}
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return y, nil
}

// LeadingMonth parses characters 6-7 of a "YYYY-MM..." timestamp.
// Returns false when the month is missing or outside 1..12.
func LeadingMonth(s string) (int, bool) {
	if len(s) < 7 || s[4] != '-' {
		return 0, false
	}
	m, err := strconv.Atoi(s[5:7])
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}
