package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/units"
)

const ManifestVersion = 1

// Manifest sits next to a capture file and describes how to interpret it.
type Manifest struct {
	Version   int    `yaml:"version"`
	SessionID int64  `yaml:"sessionId,omitempty"`
	DataFile  string `yaml:"dataFile"` // relative to the manifest

	Device string `yaml:"device,omitempty"`
	Board  string `yaml:"board,omitempty"`
	Serial string `yaml:"serial,omitempty"`

	Channel    bladerf.Channel `yaml:"channel"`
	Format     bladerf.Format  `yaml:"format"`
	Frequency  units.Hertz     `yaml:"frequency"`
	SampleRate units.Sps       `yaml:"sampleRate"`
	Bandwidth  units.Hertz     `yaml:"bandwidth,omitempty"`

	Started  time.Time `yaml:"started"`
	Finished time.Time `yaml:"finished"`
	Samples  uint64    `yaml:"samples"`
	Overruns int       `yaml:"overruns"`
}

// NewManifest describes a finished session. SampleRate and Bandwidth are the
// values the board reported, not the requested ones.
func NewManifest(cfg *Config, stats Stats, dataFile string) *Manifest {
	return &Manifest{
		Version:    ManifestVersion,
		DataFile:   dataFile,
		Device:     cfg.Device,
		Channel:    cfg.Channel,
		Format:     cfg.Format,
		Frequency:  cfg.Frequency,
		SampleRate: stats.SampleRate,
		Bandwidth:  stats.Bandwidth,
		Started:    stats.Started.UTC(),
		Finished:   stats.Finished.UTC(),
		Samples:    stats.Samples,
		Overruns:   stats.Overruns,
	}
}

// DataPath resolves DataFile against the directory of the manifest.
func (m *Manifest) DataPath(manifestPath string) string {
	if filepath.IsAbs(m.DataFile) {
		return m.DataFile
	}
	return filepath.Join(filepath.Dir(manifestPath), m.DataFile)
}

func (m *Manifest) Validate() error {
	if m.Version != ManifestVersion {
		return fmt.Errorf("capture.Manifest: unsupported version: %d", m.Version)
	}
	if m.DataFile == "" {
		return fmt.Errorf("capture.Manifest: data file is required")
	}
	if m.SampleRate == 0 {
		return fmt.Errorf("capture.Manifest: sample rate is required")
	}
	return nil
}

func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}
	return nil
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}

	var m Manifest
	if err = yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("error decoding manifest: %w", err)
	}
	if err = m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}
