package util

import "strconv"

// ParseDecimalComma parses a float that may use a decimal comma ("60,6596").
func ParseDecimalComma(s string) (float64, error) {
	b := []byte(s)
	for i, c := range b {
		if c == ',' {
			b[i] = '.'
		}
	}
	return strconv.ParseFloat(string(b), 64)
}
