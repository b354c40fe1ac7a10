package storage

import (
	"database/sql"
	"time"

	"github.com/roman-kulish/bladerf/internal/units"
)

// Session is one capture run as recorded in the database.
type Session struct {
	ID        int64
	StartTime time.Time
	EndTime   *time.Time // nil while the capture is running or if it crashed

	Device string
	Board  string
	Serial string

	Channel    string
	Format     string
	Frequency  units.Hertz
	SampleRate units.Sps
	Bandwidth  units.Hertz

	DataFile string
	Samples  uint64
	Overruns int

	// Config is the capture configuration. On write it may be a string,
	// []byte or any YAML serialisable value; on read it is the stored text.
	Config any
}

type sessionData struct {
	ID         int64
	StartTime  time.Time
	EndTime    sql.NullTime
	Device     string
	Board      sql.NullString
	Serial     sql.NullString
	Channel    string
	Format     string
	Frequency  int64
	SampleRate int64
	Bandwidth  int64
	DataFile   sql.NullString
	Samples    int64
	Overruns   int64
	Config     sql.NullString
}

type transferData struct {
	Seq        int64
	Timestamp  int64
	Samples    int64
	Flags      int64
	Status     int64
	Retries    int64
	ReceivedAt time.Time
}
