package bladerf

import (
	"fmt"
	"unicode/utf8"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

// Backend is the driver backend a device was opened through.
type Backend int

const (
	BackendAny     Backend = driver.BackendAny
	BackendLinux   Backend = driver.BackendLinux
	BackendLibUSB  Backend = driver.BackendLibUSB
	BackendCypress Backend = driver.BackendCypress
	BackendDummy   Backend = driver.BackendDummy
)

func (b Backend) String() string {
	switch b {
	case BackendAny:
		return "any"
	case BackendLinux:
		return "linux"
	case BackendLibUSB:
		return "libusb"
	case BackendCypress:
		return "cypress"
	case BackendDummy:
		return "dummy"
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

// DeviceSpeed is the negotiated USB speed.
type DeviceSpeed int

const (
	SpeedUnknown DeviceSpeed = driver.SpeedUnknown
	SpeedHigh    DeviceSpeed = driver.SpeedHigh
	SpeedSuper   DeviceSpeed = driver.SpeedSuper
)

func (s DeviceSpeed) String() string {
	switch s {
	case SpeedHigh:
		return "High Speed (USB 2.0)"
	case SpeedSuper:
		return "SuperSpeed (USB 3.0)"
	}
	return "Unknown"
}

// DeviceInfo describes an opened board.
type DeviceInfo struct {
	Backend  Backend
	USBBus   uint8
	USBAddr  uint8
	Instance uint32

	serial       string
	manufacturer string
	product      string
}

func newDeviceInfo(raw driver.DevInfo) DeviceInfo {
	return DeviceInfo{
		Backend:      Backend(raw.Backend),
		USBBus:       raw.USBBus,
		USBAddr:      raw.USBAddr,
		Instance:     raw.Instance,
		serial:       raw.Serial,
		manufacturer: raw.Manufacturer,
		product:      raw.Product,
	}
}

func validString(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", ErrCString
	}
	return s, nil
}

// Serial returns the board serial number, or ErrCString if it is not valid
// UTF-8.
func (i DeviceInfo) Serial() (string, error) { return validString(i.serial) }

// Manufacturer returns the USB manufacturer string, or ErrCString if it is
// not valid UTF-8.
func (i DeviceInfo) Manufacturer() (string, error) { return validString(i.manufacturer) }

// Product returns the USB product string, or ErrCString if it is not valid
// UTF-8.
func (i DeviceInfo) Product() (string, error) { return validString(i.product) }

func (i DeviceInfo) String() string {
	orNA := func(s string, err error) string {
		if err != nil || s == "" {
			return "NA"
		}
		return s
	}
	return fmt.Sprintf("%s, USB %d:%d, serial=%s",
		orNA(i.Product()), i.USBBus, i.USBAddr, orNA(i.Serial()))
}
