package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a JSON number that also accepts a numeric string, which is what
// HTML form inputs post ("12", " 4.5 "). Any other value decodes to NaN so
// validation reports it against the field instead of failing the decode.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = Number(math.NaN())
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) {
		v = math.NaN()
	}
	*n = Number(v)
	return nil
}

// Float returns the value, or nil when n is nil.
func (n *Number) Float() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}

// Int returns the value as a whole number. ok is false for fractions, NaN
// and values outside the int32 range.
func (n Number) Int() (v int, ok bool) {
	f := float64(n)
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Num is shorthand for building inputs in code.
func Num(v float64) *Number {
	n := Number(v)
	return &n
}
