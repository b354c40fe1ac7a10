package bladerf

import (
	"fmt"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

// MetaFlags is the flags word of a Metadata record.
//
// Before a transfer the caller sets burst and timing control bits; after an
// RX transfer the same word carries hardware indications. Each accessor reads
// or writes exactly one bit.
type MetaFlags struct {
	bits uint32
}

// MetaFlagsFromBits wraps a raw flags word.
func MetaFlagsFromBits(bits uint32) MetaFlags {
	return MetaFlags{bits: bits}
}

// NewRXNowFlags returns flags with only RXNow set: receive immediately,
// ignoring the timestamp.
func NewRXNowFlags() MetaFlags {
	var f MetaFlags
	f.SetRXNow(true)
	return f
}

func (f MetaFlags) has(mask uint32) bool {
	return f.bits&mask != 0
}

func (f *MetaFlags) set(mask uint32, on bool) {
	if on {
		f.bits |= mask
	} else {
		f.bits &^= mask
	}
}

// Bits returns the raw flags word.
func (f MetaFlags) Bits() uint32 { return f.bits }

// Clear zeroes all bits.
func (f *MetaFlags) Clear() { f.bits = 0 }

// TXBurstStart reports whether the buffer opens a burst.
func (f MetaFlags) TXBurstStart() bool { return f.has(driver.MetaFlagTXBurstStart) }

// SetTXBurstStart marks the first buffer of a burst.
func (f *MetaFlags) SetTXBurstStart(on bool) { f.set(driver.MetaFlagTXBurstStart, on) }

// TXBurstEnd reports whether the buffer closes a burst.
func (f MetaFlags) TXBurstEnd() bool { return f.has(driver.MetaFlagTXBurstEnd) }

// SetTXBurstEnd marks the last buffer of a burst.
func (f *MetaFlags) SetTXBurstEnd(on bool) { f.set(driver.MetaFlagTXBurstEnd, on) }

// TXNow reports whether the burst is sent without waiting for the timestamp.
func (f MetaFlags) TXNow() bool { return f.has(driver.MetaFlagTXNow) }

// SetTXNow sends the burst immediately, ignoring the timestamp.
func (f *MetaFlags) SetTXNow(on bool) { f.set(driver.MetaFlagTXNow, on) }

// TXUpdateTimestamp reports whether the timestamp starts a new burst timeline.
func (f MetaFlags) TXUpdateTimestamp() bool { return f.has(driver.MetaFlagTXUpdateTimestamp) }

// SetTXUpdateTimestamp makes the driver adopt the record timestamp mid-burst.
func (f *MetaFlags) SetTXUpdateTimestamp(on bool) { f.set(driver.MetaFlagTXUpdateTimestamp, on) }

// RXNow reports whether samples are requested as soon as possible.
func (f MetaFlags) RXNow() bool { return f.has(driver.MetaFlagRXNow) }

// SetRXNow requests samples as soon as possible, ignoring the timestamp.
func (f *MetaFlags) SetRXNow(on bool) { f.set(driver.MetaFlagRXNow, on) }

// RXHWUnderflow, RXHWMiniexp1 and RXHWMiniexp2 are set by the hardware and
// only meaningful after an RX transfer.
func (f MetaFlags) RXHWUnderflow() bool { return f.has(driver.MetaFlagRXHWUnderflow) }
func (f MetaFlags) RXHWMiniexp1() bool  { return f.has(driver.MetaFlagRXHWMiniexp1) }
func (f MetaFlags) RXHWMiniexp2() bool  { return f.has(driver.MetaFlagRXHWMiniexp2) }

func (f MetaFlags) String() string {
	return fmt.Sprintf("0x%X", f.bits)
}

// MetaStatus is the status word reported by the driver after a transfer.
type MetaStatus struct {
	bits uint32
}

// MetaStatusFromBits wraps a raw status word.
func MetaStatusFromBits(bits uint32) MetaStatus {
	return MetaStatus{bits: bits}
}

// Bits returns the raw status word.
func (s MetaStatus) Bits() uint32 { return s.bits }

// Clear zeroes all bits.
func (s *MetaStatus) Clear() { s.bits = 0 }

// Overrun reports that samples were dropped because the host did not read
// fast enough.
func (s MetaStatus) Overrun() bool { return s.bits&driver.MetaStatusOverrun != 0 }

// Underrun reports that the TX path ran dry.
func (s MetaStatus) Underrun() bool { return s.bits&driver.MetaStatusUnderrun != 0 }

func (s MetaStatus) String() string {
	return fmt.Sprintf("0x%X", s.bits)
}

// Metadata accompanies a streaming call. It is owned by the caller and must not
// be touched by anyone else while a transfer that uses it is in flight.
type Metadata struct {
	raw driver.Metadata
}

// NewMetadata returns a zeroed record.
func NewMetadata() *Metadata {
	return &Metadata{}
}

// NewRXNowMetadata returns a zeroed record with the RXNow flag set.
func NewRXNowMetadata() *Metadata {
	md := NewMetadata()
	md.SetFlags(NewRXNowFlags())
	return md
}

// Clear zeroes every field, including the reserved region.
func (m *Metadata) Clear() {
	m.raw = driver.Metadata{}
}

// Timestamp is the device sample counter: an input hint for TX, refreshed by
// the driver after RX.
func (m *Metadata) Timestamp() uint64 { return m.raw.Timestamp }

// SetTimestamp sets the sample counter a TX burst should start at.
func (m *Metadata) SetTimestamp(t uint64) { m.raw.Timestamp = t }

// Flags returns a copy of the flags word.
func (m *Metadata) Flags() MetaFlags { return MetaFlags{bits: m.raw.Flags} }

// SetFlags replaces the flags word.
func (m *Metadata) SetFlags(f MetaFlags) { m.raw.Flags = f.bits }

// Status reads the status field, which is separate from the flags word.
func (m *Metadata) Status() MetaStatus { return MetaStatus{bits: m.raw.Status} }

// ActualCount is the number of samples the driver transferred.
func (m *Metadata) ActualCount() uint32 { return m.raw.ActualCount }

func (m *Metadata) String() string {
	return fmt.Sprintf("t=%d, actual-count=%d, flags=%s, status=%s",
		m.Timestamp(), m.ActualCount(), m.Flags(), m.Status())
}

// native returns the record handed to the driver, nil for no-metadata mode.
func (m *Metadata) native() *driver.Metadata {
	if m == nil {
		return nil
	}
	return &m.raw
}
