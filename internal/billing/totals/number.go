package totals

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that decodes from any JSON value without failing.
// Numbers and numeric strings keep their value; null, empty strings and
// anything unparsable become 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		*n = Number(ParseNumber(s))
		return nil
	}
	*n = Number(ParseNumber(string(data)))
	return nil
}

// Float64 returns the coerced value.
func (n Number) Float64() float64 {
	return finite(float64(n))
}

// ParseNumber converts a form value into a float64, returning 0 for
// anything that is not a finite number.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
