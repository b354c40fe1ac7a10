//go:build bladerf

package driver

/*
#cgo LDFLAGS: -lbladeRF
#include <stdlib.h>
#include <libbladeRF.h>
*/
import "C"

import "unsafe"

type libBladeRF struct{}

// Native returns the libbladeRF binding.
func Native() Driver {
	return libBladeRF{}
}

func dev(h Handle) *C.struct_bladerf {
	return (*C.struct_bladerf)(h)
}

func (libBladeRF) SetUSBResetOnOpen(enabled bool) {
	C.bladerf_set_usb_reset_on_open(C.bool(enabled))
}

func (libBladeRF) Open(identifier string) (Handle, int) {
	id := C.CString(identifier)
	defer C.free(unsafe.Pointer(id))

	var d *C.struct_bladerf
	status := C.bladerf_open(&d, id)
	return Handle(unsafe.Pointer(d)), int(status)
}

func (libBladeRF) Close(h Handle) {
	C.bladerf_close(dev(h))
}

func (libBladeRF) DeviceReset(h Handle) int {
	return int(C.bladerf_device_reset(dev(h)))
}

func (libBladeRF) DevInfo(h Handle) (DevInfo, int) {
	var info C.struct_bladerf_devinfo
	if status := C.bladerf_get_devinfo(dev(h), &info); status != 0 {
		return DevInfo{}, int(status)
	}

	return DevInfo{
		Backend:      int(info.backend),
		Serial:       C.GoString(&info.serial[0]),
		USBBus:       uint8(info.usb_bus),
		USBAddr:      uint8(info.usb_addr),
		Instance:     uint32(info.instance),
		Manufacturer: C.GoString(&info.manufacturer[0]),
		Product:      C.GoString(&info.product[0]),
	}, Success
}

func (libBladeRF) DeviceSpeed(h Handle) int {
	return int(C.bladerf_device_speed(dev(h)))
}

func (libBladeRF) BoardName(h Handle) string {
	return C.GoString(C.bladerf_get_board_name(dev(h)))
}

func (libBladeRF) SetSampleRate(h Handle, ch int, rate uint32) (uint32, int) {
	var actual C.bladerf_sample_rate
	status := C.bladerf_set_sample_rate(dev(h), C.bladerf_channel(ch), C.bladerf_sample_rate(rate), &actual)
	return uint32(actual), int(status)
}

func (libBladeRF) SetBandwidth(h Handle, ch int, bandwidth uint32) (uint32, int) {
	var actual C.bladerf_bandwidth
	status := C.bladerf_set_bandwidth(dev(h), C.bladerf_channel(ch), C.bladerf_bandwidth(bandwidth), &actual)
	return uint32(actual), int(status)
}

func (libBladeRF) SetFrequency(h Handle, ch int, frequency uint64) int {
	return int(C.bladerf_set_frequency(dev(h), C.bladerf_channel(ch), C.bladerf_frequency(frequency)))
}

func (libBladeRF) SyncConfig(h Handle, layout, format int, numBuffers, bufferSize, numTransfers, timeoutMs uint32) int {
	return int(C.bladerf_sync_config(
		dev(h),
		C.bladerf_channel_layout(layout),
		C.bladerf_format(format),
		C.uint(numBuffers),
		C.uint(bufferSize),
		C.uint(numTransfers),
		C.uint(timeoutMs),
	))
}

func (libBladeRF) EnableModule(h Handle, ch int, enable bool) int {
	return int(C.bladerf_enable_module(dev(h), C.bladerf_channel(ch), C.bool(enable)))
}

func samplesPtr(samples []int16) unsafe.Pointer {
	if len(samples) == 0 {
		return nil
	}
	return unsafe.Pointer(&samples[0])
}

func (libBladeRF) SyncRX(h Handle, samples []int16, numSamples uint32, md *Metadata, timeoutMs uint32) int {
	return int(C.bladerf_sync_rx(
		dev(h),
		samplesPtr(samples),
		C.uint(numSamples),
		(*C.struct_bladerf_metadata)(unsafe.Pointer(md)),
		C.uint(timeoutMs),
	))
}

func (libBladeRF) SyncTX(h Handle, samples []int16, numSamples uint32, md *Metadata, timeoutMs uint32) int {
	return int(C.bladerf_sync_tx(
		dev(h),
		samplesPtr(samples),
		C.uint(numSamples),
		(*C.struct_bladerf_metadata)(unsafe.Pointer(md)),
		C.uint(timeoutMs),
	))
}
