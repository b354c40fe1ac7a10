// Package driver is the narrow boundary to the vendor libbladeRF C API.
//
// Each operation takes already validated arguments in the driver's native
// integer widths and returns the raw signed status code of the C call, 0
// meaning success. Translating statuses into errors and Go types into driver
// codes is the job of the caller.
package driver

import "unsafe"

// Handle is the opaque struct bladerf pointer. A nil Handle is the closed
// sentinel.
type Handle unsafe.Pointer

// Metadata mirrors struct bladerf_metadata field for field, so it can be handed
// to the C library without copying.
type Metadata struct {
	Timestamp   uint64
	Flags       uint32
	Status      uint32
	ActualCount uint32
	Reserved    [32]uint8
}

// DevInfo mirrors struct bladerf_devinfo with the C strings already copied.
type DevInfo struct {
	Backend      int
	Serial       string
	USBBus       uint8
	USBAddr      uint8
	Instance     uint32
	Manufacturer string
	Product      string
}

// Driver issues libbladeRF calls.
type Driver interface {
	// SetUSBResetOnOpen toggles the process-wide reset-on-open behaviour for
	// all subsequently opened handles.
	SetUSBResetOnOpen(enabled bool)

	Open(identifier string) (Handle, int)
	Close(h Handle)
	DeviceReset(h Handle) int
	DevInfo(h Handle) (DevInfo, int)
	DeviceSpeed(h Handle) int
	BoardName(h Handle) string

	SetSampleRate(h Handle, ch int, rate uint32) (actual uint32, status int)
	SetBandwidth(h Handle, ch int, bandwidth uint32) (actual uint32, status int)
	SetFrequency(h Handle, ch int, frequency uint64) int

	SyncConfig(h Handle, layout, format int, numBuffers, bufferSize, numTransfers, timeoutMs uint32) int
	EnableModule(h Handle, ch int, enable bool) int
	SyncRX(h Handle, samples []int16, numSamples uint32, md *Metadata, timeoutMs uint32) int
	SyncTX(h Handle, samples []int16, numSamples uint32, md *Metadata, timeoutMs uint32) int
}
