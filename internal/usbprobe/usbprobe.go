// Package usbprobe enumerates bladeRF boards attached over USB without going
// through libbladeRF, and builds the identifier strings bladerf.Open accepts.
package usbprobe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/gousb"
)

// USB IDs of bladeRF boards.
var (
	NuandVendorID   = gousb.ID(0x2cf0)
	NuandProductID  = gousb.ID(0x5246)
	NuandBootloader = gousb.ID(0x5247)

	// Boards flashed with old firmware enumerate with the OpenMoko IDs.
	LegacyVendorID   = gousb.ID(0x1d50)
	LegacyProductID  = gousb.ID(0x6066)
	LegacyBootloader = gousb.ID(0x6080)
)

// Board is one bladeRF seen on the bus.
type Board struct {
	Bus          int
	Address      int
	Speed        string
	Manufacturer string
	Product      string
	Serial       string
	Bootloader   bool
}

// Identifier returns the bladerf.Open identifier of the board, preferring the
// serial number, which survives re-enumeration.
func (b Board) Identifier() string {
	if b.Serial != "" {
		return "*:serial=" + b.Serial
	}
	return fmt.Sprintf("*:device=%d:%d", b.Bus, b.Address)
}

func (b Board) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "bus %03d device %03d", b.Bus, b.Address)
	if b.Product != "" {
		fmt.Fprintf(&s, " %s", b.Product)
	}
	if b.Serial != "" {
		fmt.Fprintf(&s, " serial=%s", b.Serial)
	}
	if b.Bootloader {
		s.WriteString(" (bootloader)")
	}
	return s.String()
}

// IsBladeRF reports whether the vendor/product pair is a bladeRF, and whether
// it is running the bootloader rather than the application firmware.
func IsBladeRF(vendor, product gousb.ID) (match, bootloader bool) {
	switch vendor {
	case NuandVendorID:
		return product == NuandProductID || product == NuandBootloader, product == NuandBootloader
	case LegacyVendorID:
		return product == LegacyProductID || product == LegacyBootloader, product == LegacyBootloader
	}
	return false, false
}

// List opens every attached bladeRF briefly to read its string descriptors.
// Boards that cannot be opened, because they are busy or access is denied,
// are still listed with empty strings.
func List() ([]Board, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var seen []gousb.DeviceDesc
	devices, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		match, _ := IsBladeRF(desc.Vendor, desc.Product)
		if match {
			seen = append(seen, *desc)
		}
		return match
	})
	// OpenDevices returns the devices it could open alongside the first error.
	if err != nil && len(devices) == 0 && !errors.Is(err, gousb.ErrorAccess) && !errors.Is(err, gousb.ErrorBusy) {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	opened := make([]Board, 0, len(devices))
	for _, dev := range devices {
		opened = append(opened, describe(dev))
		dev.Close()
	}

	return mergeBoards(seen, opened), nil
}

// mergeBoards lists one board per descriptor, in enumeration order, taking
// the opened board where there is one.
func mergeBoards(seen []gousb.DeviceDesc, opened []Board) []Board {
	boards := make([]Board, 0, len(seen))
	for i := range seen {
		b := boardFromDesc(&seen[i])
		for _, o := range opened {
			if o.Bus == b.Bus && o.Address == b.Address {
				b = o
				break
			}
		}
		boards = append(boards, b)
	}
	return boards
}

func boardFromDesc(desc *gousb.DeviceDesc) Board {
	_, bootloader := IsBladeRF(desc.Vendor, desc.Product)

	return Board{
		Bus:        desc.Bus,
		Address:    desc.Address,
		Speed:      desc.Speed.String(),
		Bootloader: bootloader,
	}
}

func describe(dev *gousb.Device) Board {
	b := boardFromDesc(dev.Desc)

	// Missing string descriptors are not fatal.
	b.Manufacturer, _ = dev.Manufacturer()
	b.Product, _ = dev.Product()
	b.Serial, _ = dev.SerialNumber()

	return b
}
