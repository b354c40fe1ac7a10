// Package drivertest provides an in-memory driver.Driver for tests.
package drivertest

import (
	"sync"
	"unsafe"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

// SyncConfigCall captures the arguments of the last SyncConfig call.
type SyncConfigCall struct {
	Layout, Format                                  int
	NumBuffers, BufferSize, NumTransfers, TimeoutMs uint32
}

// TransferCall captures the arguments of a SyncRX or SyncTX call.
type TransferCall struct {
	NumSamples uint32
	HasMeta    bool
	Flags      uint32
	Timestamp  uint64
	TimeoutMs  uint32
}

type fakeDevice struct {
	id string
}

// Fake emulates a single bladeRF board. Zero value is ready to use and
// behaves like a healthy device.
//
// Like libbladeRF, it rejects transfers with ErrNotInit until SyncConfig has
// succeeded and the channel direction has been enabled.
type Fake struct {
	mu sync.Mutex

	// OpenStatus is returned by Open; NullHandle makes a successful Open
	// return a nil handle.
	OpenStatus int
	NullHandle bool

	// Status forces the status of a named operation ("SetFrequency",
	// "SyncConfig", ...).
	Status map[string]int

	// RXStatuses are consumed in order by SyncRX before normal behaviour.
	RXStatuses []int

	Info  driver.DevInfo
	Board string
	Speed int

	// SampleRateStep and BandwidthStep round requested values down to a
	// multiple, emulating hardware that cannot hit values exactly.
	SampleRateStep uint32
	BandwidthStep  uint32

	// RXStatusBits is OR-ed into the metadata status of each RX transfer.
	RXStatusBits uint32

	ResetOnOpen bool
	Calls       []string
	Closed      int
	Frequency   map[int]uint64
	SampleRate  map[int]uint32
	Bandwidth   map[int]uint32
	Enabled     map[int]bool
	SyncConfigs []SyncConfigCall
	RX          []TransferCall
	TX          []TransferCall

	configured bool
	layout     int
	timestamp  uint64
	counter    int16
}

var _ driver.Driver = (*Fake)(nil)

func (f *Fake) record(op string) int {
	f.Calls = append(f.Calls, op)
	if status, ok := f.Status[op]; ok {
		return status
	}
	return driver.Success
}

func (f *Fake) SetUSBResetOnOpen(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("SetUSBResetOnOpen")
	f.ResetOnOpen = enabled
}

func (f *Fake) Open(identifier string) (driver.Handle, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("Open")
	if f.OpenStatus != driver.Success {
		return nil, f.OpenStatus
	}
	if f.NullHandle {
		return nil, driver.Success
	}
	return driver.Handle(unsafe.Pointer(&fakeDevice{id: identifier})), driver.Success
}

func (f *Fake) Close(h driver.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("Close")
	if h != nil {
		f.Closed++
	}
}

func (f *Fake) DeviceReset(driver.Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("DeviceReset")
}

func (f *Fake) DevInfo(driver.Handle) (driver.DevInfo, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status := f.record("DevInfo"); status != driver.Success {
		return driver.DevInfo{}, status
	}
	return f.Info, driver.Success
}

func (f *Fake) DeviceSpeed(driver.Handle) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("DeviceSpeed")
	return f.Speed
}

func (f *Fake) BoardName(driver.Handle) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("BoardName")
	return f.Board
}

func roundDown(v, step uint32) uint32 {
	if step == 0 {
		return v
	}
	return v - v%step
}

func (f *Fake) SetSampleRate(_ driver.Handle, ch int, rate uint32) (uint32, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status := f.record("SetSampleRate"); status != driver.Success {
		return 0, status
	}
	if f.SampleRate == nil {
		f.SampleRate = make(map[int]uint32)
	}
	actual := roundDown(rate, f.SampleRateStep)
	f.SampleRate[ch] = actual
	return actual, driver.Success
}

func (f *Fake) SetBandwidth(_ driver.Handle, ch int, bandwidth uint32) (uint32, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status := f.record("SetBandwidth"); status != driver.Success {
		return 0, status
	}
	if f.Bandwidth == nil {
		f.Bandwidth = make(map[int]uint32)
	}
	actual := roundDown(bandwidth, f.BandwidthStep)
	f.Bandwidth[ch] = actual
	return actual, driver.Success
}

func (f *Fake) SetFrequency(_ driver.Handle, ch int, frequency uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status := f.record("SetFrequency"); status != driver.Success {
		return status
	}
	if f.Frequency == nil {
		f.Frequency = make(map[int]uint64)
	}
	f.Frequency[ch] = frequency
	return driver.Success
}

func (f *Fake) SyncConfig(_ driver.Handle, layout, format int, numBuffers, bufferSize, numTransfers, timeoutMs uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status := f.record("SyncConfig"); status != driver.Success {
		return status
	}
	f.SyncConfigs = append(f.SyncConfigs, SyncConfigCall{
		Layout:       layout,
		Format:       format,
		NumBuffers:   numBuffers,
		BufferSize:   bufferSize,
		NumTransfers: numTransfers,
		TimeoutMs:    timeoutMs,
	})
	f.configured = true
	f.layout = layout
	return driver.Success
}

func (f *Fake) EnableModule(_ driver.Handle, ch int, enable bool) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if status := f.record("EnableModule"); status != driver.Success {
		return status
	}
	if f.Enabled == nil {
		f.Enabled = make(map[int]bool)
	}
	f.Enabled[ch] = enable
	return driver.Success
}

// streaming reports whether a direction (0 RX, 1 TX) is configured and enabled.
func (f *Fake) streaming(direction int) bool {
	if !f.configured || f.layout&1 != direction {
		return false
	}
	for ch, on := range f.Enabled {
		if on && ch&1 == direction {
			return true
		}
	}
	return false
}

func (f *Fake) SyncRX(_ driver.Handle, samples []int16, numSamples uint32, md *driver.Metadata, timeoutMs uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := TransferCall{NumSamples: numSamples, HasMeta: md != nil, TimeoutMs: timeoutMs}
	if md != nil {
		call.Flags = md.Flags
		call.Timestamp = md.Timestamp
	}
	f.RX = append(f.RX, call)

	if status := f.record("SyncRX"); status != driver.Success {
		return status
	}
	if len(f.RXStatuses) > 0 {
		status := f.RXStatuses[0]
		f.RXStatuses = f.RXStatuses[1:]
		if status != driver.Success {
			return status
		}
	}
	if !f.streaming(0) {
		return driver.ErrNotInit
	}

	for i := range samples[:2*numSamples] {
		f.counter++
		samples[i] = f.counter
	}
	if md != nil {
		md.Timestamp = f.timestamp
		md.ActualCount = numSamples
		md.Status = f.RXStatusBits
	}
	f.timestamp += uint64(numSamples)
	return driver.Success
}

func (f *Fake) SyncTX(_ driver.Handle, _ []int16, numSamples uint32, md *driver.Metadata, timeoutMs uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := TransferCall{NumSamples: numSamples, HasMeta: md != nil, TimeoutMs: timeoutMs}
	if md != nil {
		call.Flags = md.Flags
		call.Timestamp = md.Timestamp
	}
	f.TX = append(f.TX, call)

	if status := f.record("SyncTX"); status != driver.Success {
		return status
	}
	if !f.streaming(1) {
		return driver.ErrNotInit
	}
	return driver.Success
}

// CallCount returns how many times op was invoked.
func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.Calls {
		if c == op {
			n++
		}
	}
	return n
}
