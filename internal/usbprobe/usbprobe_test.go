package usbprobe

import (
	"testing"

	"github.com/google/gousb"
)

func TestIsBladeRF(t *testing.T) {
	tests := []struct {
		name           string
		vendor, prod   gousb.ID
		wantMatch      bool
		wantBootloader bool
	}{
		{"nuand", 0x2cf0, 0x5246, true, false},
		{"nuand bootloader", 0x2cf0, 0x5247, true, true},
		{"legacy", 0x1d50, 0x6066, true, false},
		{"legacy bootloader", 0x1d50, 0x6080, true, true},
		{"rtl-sdr", 0x0bda, 0x2838, false, false},
		{"nuand vendor, other product", 0x2cf0, 0x0001, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, bootloader := IsBladeRF(tt.vendor, tt.prod)
			if match != tt.wantMatch || bootloader != tt.wantBootloader {
				t.Errorf("IsBladeRF(%s, %s) = %v, %v", tt.vendor, tt.prod, match, bootloader)
			}
		})
	}
}

func TestBoard_Identifier(t *testing.T) {
	b := Board{Bus: 2, Address: 7}
	if got := b.Identifier(); got != "*:device=2:7" {
		t.Errorf("Identifier() = %q", got)
	}

	b.Serial = "f12ce1037830a1b27f3ceeba1f521413"
	if got := b.Identifier(); got != "*:serial=f12ce1037830a1b27f3ceeba1f521413" {
		t.Errorf("Identifier() = %q", got)
	}

	b.Product = "bladeRF 2.0"
	b.Bootloader = true
	if got, want := b.String(), "bus 002 device 007 bladeRF 2.0 serial=f12ce1037830a1b27f3ceeba1f521413 (bootloader)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMergeBoards(t *testing.T) {
	seen := []gousb.DeviceDesc{
		{Bus: 1, Address: 3, Speed: gousb.SpeedSuper, Vendor: NuandVendorID, Product: NuandProductID},
		{Bus: 1, Address: 4, Speed: gousb.SpeedHigh, Vendor: NuandVendorID, Product: NuandBootloader},
	}
	opened := []Board{{Bus: 1, Address: 3, Speed: gousb.SpeedSuper.String(), Product: "bladeRF 2.0", Serial: "abc"}}

	boards := mergeBoards(seen, opened)
	if len(boards) != 2 {
		t.Fatalf("got %d boards, want 2", len(boards))
	}
	if boards[0] != opened[0] {
		t.Errorf("boards[0] = %+v, want the opened board %+v", boards[0], opened[0])
	}

	want := Board{Bus: 1, Address: 4, Speed: gousb.SpeedHigh.String(), Bootloader: true}
	if boards[1] != want {
		t.Errorf("busy board = %+v, want %+v", boards[1], want)
	}
	if got := boards[1].Identifier(); got != "*:device=1:4" {
		t.Errorf("busy board Identifier() = %q", got)
	}
}
