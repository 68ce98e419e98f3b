package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// InfSymbol is how an infinite index is written in YAML and JSON output.
const InfSymbol = "inf"

// Index is a computed sociometric index. Positive infinity is a meaningful
// value (density with complete reciprocation) and survives rounding and
// encoding.
type Index float64

// Inf returns the infinite index.
func Inf() Index {
	return Index(math.Inf(1))
}

// IsInf reports whether x is positive infinity.
func (x Index) IsInf() bool {
	return math.IsInf(float64(x), 1)
}

// Float64 returns x as a float64.
func (x Index) Float64() float64 {
	return float64(x)
}

// Round rounds x to precision decimal places. Infinity is unchanged.
func (x Index) Round(precision int) Index {
	return Index(Round(float64(x), precision))
}

// String formats x with the shortest representation, or InfSymbol.
func (x Index) String() string {
	if x.IsInf() {
		return InfSymbol
	}
	return strconv.FormatFloat(float64(x), 'f', -1, 64)
}

// MarshalJSON encodes infinity as the string InfSymbol.
func (x Index) MarshalJSON() ([]byte, error) {
	if x.IsInf() {
		return json.Marshal(InfSymbol)
	}
	return json.Marshal(float64(x))
}

// UnmarshalJSON accepts a number or the string InfSymbol.
func (x *Index) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != InfSymbol {
			return fmt.Errorf("invalid index %q", s)
		}
		*x = Inf()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*x = Index(f)
	return nil
}

// MarshalYAML encodes infinity as the string InfSymbol.
func (x Index) MarshalYAML() (interface{}, error) {
	if x.IsInf() {
		return InfSymbol, nil
	}
	return float64(x), nil
}

// Round rounds f to precision decimal places. Exact ties go to the even
// digit, so 0.125 becomes 0.12 and 0.375 becomes 0.38.
func Round(f float64, precision int) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) || precision < 0 {
		return f
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', precision, 64), 64)
	if err != nil {
		return f
	}
	return r
}
