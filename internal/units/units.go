// Package units provides the value types used to talk to the radio: sample
// rates, frequencies in three scales and millisecond durations.
//
// Every type wraps an unsigned 64-bit magnitude in its own scale. Conversions
// that scale up (kHz to Hz, MHz to Hz, MHz to kHz) are exact integer
// multiplications, and equality across frequency scales is defined through the
// common base unit, Hertz.
package units

import "time"

// Sps is a sample rate in samples per second.
type Sps uint64

// Hertz is a frequency in Hz.
type Hertz uint64

// KiloHertz is a frequency in kHz.
type KiloHertz uint64

// MegaHertz is a frequency in MHz.
type MegaHertz uint64

// MilliSeconds is a duration in milliseconds, the timeout unit of the driver.
type MilliSeconds uint64

const (
	OneKHz Hertz = 1_000
	OneMHz Hertz = 1_000_000
	OneGHz Hertz = 1_000_000_000
)

// Frequency is any frequency value that can be normalised to Hertz.
type Frequency interface {
	Hertz() Hertz
}

// SampleRate is any rate value that can be normalised to Sps.
type SampleRate interface {
	Sps() Sps
}

// Equal reports whether two frequencies denote the same number of Hertz,
// regardless of the scale they are expressed in.
func Equal(a, b Frequency) bool {
	return a.Hertz() == b.Hertz()
}

func (s Sps) Sps() Sps { return s }

func (s Sps) AsFloat64() float64 { return float64(s) }

func (h Hertz) Hertz() Hertz { return h }

func (h Hertz) AsFloat64() float64 { return float64(h) }

// Equal reports whether h and f denote the same frequency.
func (h Hertz) Equal(f Frequency) bool { return Equal(h, f) }

// Hertz converts to Hz.
func (k KiloHertz) Hertz() Hertz { return Hertz(k) * OneKHz }

func (k KiloHertz) AsFloat64() float64 { return float64(k) }

// Equal reports whether k and f denote the same frequency.
func (k KiloHertz) Equal(f Frequency) bool { return Equal(k, f) }

// Hertz converts to Hz.
func (m MegaHertz) Hertz() Hertz { return Hertz(m) * OneMHz }

// KiloHertz converts to kHz.
func (m MegaHertz) KiloHertz() KiloHertz { return KiloHertz(m) * 1_000 }

func (m MegaHertz) AsFloat64() float64 { return float64(m) }

// Equal reports whether m and f denote the same frequency.
func (m MegaHertz) Equal(f Frequency) bool { return Equal(m, f) }

func (ms MilliSeconds) AsFloat64() float64 { return float64(ms) }

// Duration converts to a time.Duration.
func (ms MilliSeconds) Duration() time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// FromDuration truncates d to whole milliseconds. Negative durations become 0.
func FromDuration(d time.Duration) MilliSeconds {
	if d < 0 {
		return 0
	}
	return MilliSeconds(d / time.Millisecond)
}
