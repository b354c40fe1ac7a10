package app

import (
	"encoding"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roman-kulish/bladerf/internal/capture"
	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
)

const envPrefix = "BLADERF"

const (
	ImagePNG  ImageFormat = "png"
	ImageJPEG ImageFormat = "jpeg"
)

type ImageFormat string

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

const (
	defaultDatabase = "bladerf.db"
	defaultFFTSize  = 1024
	defaultMaxRows  = 2048
)

// Config is the configuration shared by all commands. Values come from the
// config file, BLADERF_* environment variables and command line flags, in
// increasing order of precedence.
type Config struct {
	LogLevel       string `mapstructure:"logLevel"`
	Database       string `mapstructure:"database"`
	USBResetOnOpen bool   `mapstructure:"usbResetOnOpen"`

	// Output is the path of the IQ file written by capture. The manifest is
	// written next to it with a .yaml extension.
	Output string `mapstructure:"output"`

	Capture   capture.Config  `mapstructure:"capture"`
	Waterfall WaterfallConfig `mapstructure:"waterfall"`
}

type WaterfallConfig struct {
	FFTSize       int         `mapstructure:"fftSize"`
	MaxRows       int         `mapstructure:"maxRows"`
	Format        ImageFormat `mapstructure:"format"`
	Theme         ColorTheme  `mapstructure:"theme"`
	MinPower      *float64    `mapstructure:"minPower"`
	MaxPower      *float64    `mapstructure:"maxPower"`
	NoAnnotations bool        `mapstructure:"noAnnotations"`
}

func (c WaterfallConfig) Validate() error {
	if c.FFTSize < 2 {
		return fmt.Errorf("app.WaterfallConfig: FFT size must be at least 2: %d given", c.FFTSize)
	}
	if _, ok := validImageFormats[c.Format]; !ok {
		return fmt.Errorf("app.WaterfallConfig: invalid image format: %s", c.Format)
	}
	if _, ok := colorThemes[c.Theme]; !ok {
		return fmt.Errorf("app.WaterfallConfig: unknown color theme: %s", c.Theme)
	}
	if c.MinPower != nil && c.MaxPower != nil && *c.MinPower >= *c.MaxPower {
		return fmt.Errorf("app.WaterfallConfig: min power must be below max power: %.1f >= %.1f", *c.MinPower, *c.MaxPower)
	}
	return nil
}

// Level parses LogLevel; an empty value is info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("app.Config: invalid log level: %s", c.LogLevel)
	}
	return level, nil
}

func textValue(m encoding.TextMarshaler) string {
	text, _ := m.MarshalText()
	return string(text)
}

func setDefaults(v *viper.Viper) {
	def := capture.DefaultConfig()

	v.SetDefault("logLevel", "info")
	v.SetDefault("database", defaultDatabase)
	v.SetDefault("usbResetOnOpen", false)
	v.SetDefault("output", "")

	v.SetDefault("capture.device", def.Device)
	v.SetDefault("capture.channel", textValue(def.Channel))
	v.SetDefault("capture.frequency", uint64(def.Frequency))
	v.SetDefault("capture.sampleRate", uint64(def.SampleRate))
	v.SetDefault("capture.bandwidth", uint64(def.Bandwidth))
	v.SetDefault("capture.format", textValue(def.Format))
	v.SetDefault("capture.numBuffers", def.NumBuffers)
	v.SetDefault("capture.samplesPerBuffer", def.SamplesPerBuffer)
	v.SetDefault("capture.numTransfers", def.NumTransfers)
	v.SetDefault("capture.streamTimeout", uint64(def.StreamTimeout))
	v.SetDefault("capture.transferTimeout", uint64(def.TransferTimeout))
	v.SetDefault("capture.numSamples", def.NumSamples)
	v.SetDefault("capture.maxRetries", def.MaxRetries)

	v.SetDefault("waterfall.fftSize", defaultFFTSize)
	v.SetDefault("waterfall.maxRows", defaultMaxRows)
	v.SetDefault("waterfall.format", string(ImagePNG))
	v.SetDefault("waterfall.theme", string(DefaultTheme))
	v.SetDefault("waterfall.noAnnotations", false)
}

// LoadConfig reads configFile (optional) and the environment, applies the
// flags bound in bindings, and decodes the result. Unit values accept the
// suffixed forms, e.g. "915M" or "2M".
func LoadConfig(configFile string, bindings map[string]*pflag.Flag) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for key, flag := range bindings {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("error binding flag %s: %w", flag.Name, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ValidateCapture checks everything the capture command needs.
func (c *Config) ValidateCapture() error {
	var errs []error
	if c.Output == "" {
		errs = append(errs, errors.New("app.Config: output file is required"))
	}
	if err := c.Capture.Validate(bladerf.MicroLimits); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
