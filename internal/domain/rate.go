package domain

import (
	"math"
	"strconv"
	"strings"
)

// Rate is a percentage rounded to one decimal place.
// It is rendered as a string with exactly one decimal digit.
type Rate float64

// NewRate computes part/total*100 rounded to one decimal, or 0 when total is 0
func NewRate(part, total int) Rate {
	if total == 0 {
		return 0
	}
	return Rate(math.Round(float64(part)/float64(total)*1000) / 10)
}

func (r Rate) String() string {
	return strconv.FormatFloat(float64(r), 'f', 1, 64)
}

// MarshalJSON renders the rate as a one-decimal string, e.g. "66.7"
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON accepts either the string form or a bare number
func (r *Rate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*r = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*r = Rate(f)
	return nil
}

// FormatFixed2 formats v with two decimals, mapping non-finite values to "0.00"
func FormatFixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
