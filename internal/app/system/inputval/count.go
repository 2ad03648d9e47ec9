package inputval

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Count is a numeric form field decoded leniently: numbers and numeric
// strings are accepted, anything else (including null and "") becomes 0.
// Fractions are truncated. Negative values are kept so a gte=0 rule can
// reject them.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*c = Count(truncate(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ParseCount(s)
		return nil
	}
	*c = 0
	return nil
}

// ParseCount converts a form value the same way Count decodes JSON.
func ParseCount(s string) Count {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return Count(truncate(f))
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}
