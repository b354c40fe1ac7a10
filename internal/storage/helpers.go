package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/bladerf/internal/capture"
	"github.com/roman-kulish/bladerf/internal/units"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toInt64(v uint64, what string) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%s %d overflows int64", what, v)
	}
	return int64(v), nil
}

func toConfigData(config any) (configData sql.NullString, err error) {
	if config == nil {
		return
	}

	switch c := config.(type) {
	case string:
		configData.String = c
	case []byte:
		configData.String = string(c)
	default:
		var p []byte
		if p, err = yaml.Marshal(c); err != nil {
			return configData, fmt.Errorf("marshaling config: %w", err)
		}
		configData.String = string(p)
	}

	configData.Valid = true
	return
}

func toSessionData(s *Session) (*sessionData, error) {
	config, err := toConfigData(s.Config)
	if err != nil {
		return nil, err
	}

	frequency, err := toInt64(uint64(s.Frequency), "frequency")
	if err != nil {
		return nil, err
	}

	start := s.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	return &sessionData{
		StartTime:  start.UTC(),
		Device:     s.Device,
		Board:      toNullString(s.Board),
		Serial:     toNullString(s.Serial),
		Channel:    s.Channel,
		Format:     s.Format,
		Frequency:  frequency,
		SampleRate: int64(s.SampleRate),
		Bandwidth:  int64(s.Bandwidth),
		DataFile:   toNullString(s.DataFile),
		Config:     config,
	}, nil
}

func fromSessionData(d *sessionData) *Session {
	s := Session{
		ID:         d.ID,
		StartTime:  d.StartTime,
		Device:     d.Device,
		Board:      d.Board.String,
		Serial:     d.Serial.String,
		Channel:    d.Channel,
		Format:     d.Format,
		Frequency:  units.Hertz(d.Frequency),
		SampleRate: units.Sps(d.SampleRate),
		Bandwidth:  units.Hertz(d.Bandwidth),
		DataFile:   d.DataFile.String,
		Samples:    uint64(d.Samples),
		Overruns:   int(d.Overruns),
	}
	if d.EndTime.Valid {
		end := d.EndTime.Time
		s.EndTime = &end
	}
	if d.Config.Valid {
		s.Config = d.Config.String
	}
	return &s
}

func toTransferData(t capture.Transfer) (*transferData, error) {
	seq, err := toInt64(t.Seq, "sequence number")
	if err != nil {
		return nil, err
	}
	timestamp, err := toInt64(t.Timestamp, "timestamp")
	if err != nil {
		return nil, err
	}

	return &transferData{
		Seq:        seq,
		Timestamp:  timestamp,
		Samples:    int64(t.Samples),
		Flags:      int64(t.Flags),
		Status:     int64(t.Status),
		Retries:    int64(t.Retries),
		ReceivedAt: t.ReceivedAt.UTC(),
	}, nil
}

func fromTransferData(d *transferData) capture.Transfer {
	return capture.Transfer{
		Seq:        uint64(d.Seq),
		Timestamp:  uint64(d.Timestamp),
		Samples:    uint32(d.Samples),
		Flags:      uint32(d.Flags),
		Status:     uint32(d.Status),
		Retries:    int(d.Retries),
		ReceivedAt: d.ReceivedAt,
	}
}
