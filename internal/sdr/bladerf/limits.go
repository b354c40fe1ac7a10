package bladerf

import (
	"fmt"

	"github.com/roman-kulish/bladerf/internal/units"
)

const (
	// SamplesPerBuffer is the granularity of streaming buffers, in samples.
	SamplesPerBuffer = 1024

	// I16PerSample is the number of int16 values in one SC16 Q11 sample.
	I16PerSample = 2
)

// Limits are the tuning ranges of a board. All bounds are inclusive.
type Limits struct {
	MinFrequency  units.Hertz
	MaxFrequency  units.Hertz
	MinBandwidth  units.Hertz
	MaxBandwidth  units.Hertz
	MinSampleRate units.Sps
	MaxSampleRate units.Sps
}

// MicroLimits are the ranges of the bladeRF 2.0 micro (xA4/xA9). The driver
// rounds a requested sample rate to one the hardware supports.
var MicroLimits = Limits{
	MinFrequency:  70 * units.OneMHz,
	MaxFrequency:  6 * units.OneGHz,
	MinBandwidth:  200 * units.OneKHz,
	MaxBandwidth:  56 * units.OneMHz,
	MinSampleRate: 1,
	MaxSampleRate: 61_440_000,
}

func (l Limits) CheckFrequency(f units.Frequency) error {
	if hz := f.Hertz(); hz < l.MinFrequency || hz > l.MaxFrequency {
		return fmt.Errorf("frequency %s outside %s..%s: %w", hz, l.MinFrequency, l.MaxFrequency, ErrRange)
	}
	return nil
}

func (l Limits) CheckBandwidth(f units.Frequency) error {
	if hz := f.Hertz(); hz < l.MinBandwidth || hz > l.MaxBandwidth {
		return fmt.Errorf("bandwidth %s outside %s..%s: %w", hz, l.MinBandwidth, l.MaxBandwidth, ErrRange)
	}
	return nil
}

func (l Limits) CheckSampleRate(r units.SampleRate) error {
	if sps := r.Sps(); sps < l.MinSampleRate || sps > l.MaxSampleRate {
		return fmt.Errorf("sample rate %s outside %s..%s: %w", sps, l.MinSampleRate, l.MaxSampleRate, ErrRange)
	}
	return nil
}

// CheckSamplesPerBuffer reports ErrSamplesPerBuffer unless n is a positive
// multiple of SamplesPerBuffer.
func CheckSamplesPerBuffer(n int) error {
	if n <= 0 || n%SamplesPerBuffer != 0 {
		return fmt.Errorf("%d samples: %w", n, ErrSamplesPerBuffer)
	}
	return nil
}
