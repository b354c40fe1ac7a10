package bladerf

import (
	"fmt"
	"strings"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

// Format is the wire encoding of one complex sample.
type Format int

const (
	// SC16Q11 is interleaved signed 16-bit I/Q in Q11 fixed point, [-2048, 2047].
	SC16Q11 Format = iota

	// SC16Q11Meta is SC16Q11 with a metadata header per buffer. Required for
	// timestamps and status flags to be reported.
	SC16Q11Meta
)

func (f Format) valid() bool {
	return f >= SC16Q11 && f <= SC16Q11Meta
}

func (f Format) code() int {
	switch f {
	case SC16Q11:
		return driver.FormatSC16Q11
	case SC16Q11Meta:
		return driver.FormatSC16Q11Meta
	}
	panic(fmt.Sprintf("bladerf: invalid format %d", int(f)))
}

// HasMetadata reports whether the format carries per-buffer metadata.
func (f Format) HasMetadata() bool {
	return f == SC16Q11Meta
}

func (f Format) String() string {
	switch f {
	case SC16Q11:
		return "Signed, Complex 16-bit Q11"
	case SC16Q11Meta:
		return "Signed, Complex 16-bit Q11, with Metadata"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat accepts "sc16q11" and "sc16q11-meta".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "sc16q11", "sc16_q11":
		return SC16Q11, nil
	case "sc16q11-meta", "sc16_q11_meta", "sc16q11meta":
		return SC16Q11Meta, nil
	}
	return 0, fmt.Errorf("bladerf.Format: invalid format %q", s)
}

func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case SC16Q11:
		return []byte("sc16q11"), nil
	case SC16Q11Meta:
		return []byte("sc16q11-meta"), nil
	}
	return nil, fmt.Errorf("bladerf.Format: invalid format %d", int(f))
}
