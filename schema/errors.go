package schema

import (
	"fmt"
	"strings"
)

// UnsupportedFrequencyError reports a frequency code outside the supported
// set (d, w, m, q, a/y).
type UnsupportedFrequencyError struct {
	Code string
}

func (e *UnsupportedFrequencyError) Error() string {
	return fmt.Sprintf("unsupported frequency %q: must be d, w, m, q, a or y", e.Code)
}

// ParseFrequency validates a frequency code and returns its canonical form.
// "y" is folded into the canonical yearly code "a".
func ParseFrequency(code string) (Frequency, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	if c == "y" {
		c = string(YearFreq)
	}
	f := Frequency(c)
	if _, ok := ValidFrequencies[f]; !ok {
		return "", &UnsupportedFrequencyError{Code: code}
	}
	return f, nil
}
