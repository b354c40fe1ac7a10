package units

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

func (h *Hertz) UnmarshalText(text []byte) error {
	v, err := ParseHertz(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

func (h Hertz) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(h), 10), nil
}

func (h *Hertz) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseHertz(value.Value)
	if err != nil {
		return fmt.Errorf("units.Hertz: failed to parse: %w", err)
	}
	*h = v
	return nil
}

func (h Hertz) MarshalYAML() (interface{}, error) {
	return uint64(h), nil
}

func (s *Sps) UnmarshalText(text []byte) error {
	v, err := ParseSps(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Sps) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(s), 10), nil
}

func (s *Sps) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseSps(value.Value)
	if err != nil {
		return fmt.Errorf("units.Sps: failed to parse: %w", err)
	}
	*s = v
	return nil
}

func (s Sps) MarshalYAML() (interface{}, error) {
	return uint64(s), nil
}

func (ms *MilliSeconds) UnmarshalText(text []byte) error {
	v, err := ParseMilliSeconds(string(text))
	if err != nil {
		return err
	}
	*ms = v
	return nil
}

func (ms MilliSeconds) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(ms), 10), nil
}

func (ms *MilliSeconds) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseMilliSeconds(value.Value)
	if err != nil {
		return fmt.Errorf("units.MilliSeconds: failed to parse: %w", err)
	}
	*ms = v
	return nil
}

func (ms MilliSeconds) MarshalYAML() (interface{}, error) {
	return uint64(ms), nil
}
