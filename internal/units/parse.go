package units

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"time"
)

// ErrEmpty is returned when parsing an empty string.
var ErrEmpty = errors.New("units: empty value")

// ParseError wraps the integer parse failure of a unit expression.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("units: parse error %q: %s", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// parseScaled parses "<digits>[hHkKmM]?" and returns the value in base units.
// A trailing character that is not a unit suffix is left in place and fails
// integer parsing.
func parseScaled(s string) (uint64, error) {
	if s == "" {
		return 0, ErrEmpty
	}

	digits, multiplier := s, uint64(1)
	switch s[len(s)-1] {
	case 'h', 'H':
		digits = s[:len(s)-1]
	case 'k', 'K':
		digits, multiplier = s[:len(s)-1], 1_000
	case 'm', 'M':
		digits, multiplier = s[:len(s)-1], 1_000_000
	}

	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Err: err}
	}

	hi, lo := bits.Mul64(n, multiplier)
	if hi != 0 {
		return 0, &ParseError{Input: s, Err: strconv.ErrRange}
	}
	return lo, nil
}

// ParseHertz parses a frequency expression such as "915M", "433920k", "100H"
// or "2400000000".
func ParseHertz(s string) (Hertz, error) {
	v, err := parseScaled(s)
	return Hertz(v), err
}

// ParseSps parses a sample rate expression using the same grammar as ParseHertz.
func ParseSps(s string) (Sps, error) {
	v, err := parseScaled(s)
	return Sps(v), err
}

// ParseMilliSeconds accepts a bare integer number of milliseconds or a Go
// duration string ("250ms", "2s").
func ParseMilliSeconds(s string) (MilliSeconds, error) {
	if s == "" {
		return 0, ErrEmpty
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return MilliSeconds(n), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &ParseError{Input: s, Err: err}
	}
	if d < 0 {
		return 0, &ParseError{Input: s, Err: strconv.ErrRange}
	}
	return FromDuration(d), nil
}
