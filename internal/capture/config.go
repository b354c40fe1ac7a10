package capture

import (
	"fmt"

	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/units"
)

const (
	DefaultNumBuffers       = 16
	DefaultSamplesPerBuffer = 8 * bladerf.SamplesPerBuffer
	DefaultNumTransfers     = 8
	DefaultStreamTimeout    = units.MilliSeconds(3500)
	DefaultTransferTimeout  = units.MilliSeconds(1000)
	DefaultMaxRetries       = 3
)

// Config describes one receive session.
type Config struct {
	// Device is the bladerf.Open identifier; empty selects the first board.
	Device string `yaml:"device" mapstructure:"device"`

	Channel    bladerf.Channel `yaml:"channel" mapstructure:"channel"`
	Frequency  units.Hertz     `yaml:"frequency" mapstructure:"frequency"`
	SampleRate units.Sps       `yaml:"sampleRate" mapstructure:"sampleRate"`
	Bandwidth  units.Hertz     `yaml:"bandwidth" mapstructure:"bandwidth"` // 0 leaves the filter untouched
	Format     bladerf.Format  `yaml:"format" mapstructure:"format"`

	NumBuffers       int                `yaml:"numBuffers" mapstructure:"numBuffers"`
	SamplesPerBuffer int                `yaml:"samplesPerBuffer" mapstructure:"samplesPerBuffer"`
	NumTransfers     int                `yaml:"numTransfers" mapstructure:"numTransfers"`
	StreamTimeout    units.MilliSeconds `yaml:"streamTimeout" mapstructure:"streamTimeout"`
	TransferTimeout  units.MilliSeconds `yaml:"transferTimeout" mapstructure:"transferTimeout"`

	// NumSamples stops the session after this many samples; 0 runs until the
	// context is cancelled.
	NumSamples uint64 `yaml:"numSamples" mapstructure:"numSamples"`

	// MaxRetries bounds consecutive retries of a transfer that timed out or
	// hit a full queue.
	MaxRetries int `yaml:"maxRetries" mapstructure:"maxRetries"`
}

// DefaultConfig returns a configuration receiving on RX0 with metadata.
func DefaultConfig() *Config {
	return &Config{
		Channel:          bladerf.RX0,
		SampleRate:       2_000_000,
		Format:           bladerf.SC16Q11Meta,
		NumBuffers:       DefaultNumBuffers,
		SamplesPerBuffer: DefaultSamplesPerBuffer,
		NumTransfers:     DefaultNumTransfers,
		StreamTimeout:    DefaultStreamTimeout,
		TransferTimeout:  DefaultTransferTimeout,
		MaxRetries:       DefaultMaxRetries,
	}
}

// Validate checks the configuration against the limits of the board.
func (c *Config) Validate(limits bladerf.Limits) error {
	if c.Channel.IsTX() {
		return fmt.Errorf("capture.Config: channel must be a receive channel: %s given", c.Channel)
	}
	if err := limits.CheckFrequency(c.Frequency); err != nil {
		return fmt.Errorf("capture.Config: %w", err)
	}
	if err := limits.CheckSampleRate(c.SampleRate); err != nil {
		return fmt.Errorf("capture.Config: %w", err)
	}
	if c.Bandwidth > 0 {
		if err := limits.CheckBandwidth(c.Bandwidth); err != nil {
			return fmt.Errorf("capture.Config: %w", err)
		}
	}
	if err := bladerf.CheckSamplesPerBuffer(c.SamplesPerBuffer); err != nil {
		return fmt.Errorf("capture.Config: %w", err)
	}
	if c.NumBuffers <= 0 {
		return fmt.Errorf("capture.Config: number of buffers must be positive: %d", c.NumBuffers)
	}
	if c.NumTransfers <= 0 || c.NumTransfers >= c.NumBuffers {
		return fmt.Errorf("capture.Config: number of transfers must be between 1 and %d: %d given", c.NumBuffers-1, c.NumTransfers)
	}
	if c.TransferTimeout == 0 {
		return fmt.Errorf("capture.Config: transfer timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("capture.Config: max retries must not be negative: %d", c.MaxRetries)
	}

	return nil
}
