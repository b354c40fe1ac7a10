package bladerf

import (
	"testing"

	"github.com/roman-kulish/bladerf/internal/sdr/driver"
)

func TestChannel_Codes(t *testing.T) {
	tests := []struct {
		ch   Channel
		code int
		tx   bool
		name string
	}{
		{RX0, 0b00, false, "RX0"},
		{RX1, 0b10, false, "RX1"},
		{TX0, 0b01, true, "TX0"},
		{TX1, 0b11, true, "TX1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ch.code(); got != tt.code {
				t.Errorf("code() = %b, want %b", got, tt.code)
			}
			if got := tt.ch.IsTX(); got != tt.tx {
				t.Errorf("IsTX() = %v, want %v", got, tt.tx)
			}
			if got := tt.ch.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}
}

func TestParseChannel(t *testing.T) {
	for _, s := range []string{"rx1", "RX1", "Rx1"} {
		ch, err := ParseChannel(s)
		if err != nil {
			t.Fatalf("ParseChannel(%q) error: %v", s, err)
		}
		if ch != RX1 {
			t.Errorf("ParseChannel(%q) = %s, want RX1", s, ch)
		}
	}

	if _, err := ParseChannel("rx2"); err == nil {
		t.Error("ParseChannel(rx2) expected error")
	}

	var ch Channel
	if err := ch.UnmarshalText([]byte("tx0")); err != nil || ch != TX0 {
		t.Errorf("UnmarshalText(tx0) = %s, %v", ch, err)
	}
	if b, _ := TX1.MarshalText(); string(b) != "tx1" {
		t.Errorf("MarshalText = %q, want tx1", b)
	}
}

func TestChannelLayout(t *testing.T) {
	tests := []struct {
		layout   ChannelLayout
		code     int
		channels int
		name     string
	}{
		{RXX1, driver.LayoutRXX1, 1, "x1 RX (SISO)"},
		{TXX1, driver.LayoutTXX1, 1, "x1 TX (SISO)"},
		{RXX2, driver.LayoutRXX2, 2, "x2 RX (MIMO)"},
		{TXX2, driver.LayoutTXX2, 2, "x2 TX (MIMO)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.code(); got != tt.code {
				t.Errorf("code() = %d, want %d", got, tt.code)
			}
			if got := tt.layout.NumChannels(); got != tt.channels {
				t.Errorf("NumChannels() = %d, want %d", got, tt.channels)
			}
			if got := tt.layout.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
		})
	}

	if got := LayoutFor(RX1, false); got != RXX1 {
		t.Errorf("LayoutFor(RX1, false) = %s", got)
	}
	if got := LayoutFor(TX0, true); got != TXX2 {
		t.Errorf("LayoutFor(TX0, true) = %s", got)
	}
}

func TestFormat(t *testing.T) {
	if SC16Q11.code() != 0 || SC16Q11Meta.code() != 1 {
		t.Fatalf("unexpected format codes %d, %d", SC16Q11.code(), SC16Q11Meta.code())
	}
	if SC16Q11.HasMetadata() || !SC16Q11Meta.HasMetadata() {
		t.Error("HasMetadata mismatch")
	}
	if got := SC16Q11.String(); got != "Signed, Complex 16-bit Q11" {
		t.Errorf("String() = %q", got)
	}

	tests := map[string]Format{
		"sc16q11":      SC16Q11,
		"SC16Q11":      SC16Q11,
		"sc16q11-meta": SC16Q11Meta,
	}
	for s, want := range tests {
		got, err := ParseFormat(s)
		if err != nil {
			t.Errorf("ParseFormat(%q) error: %v", s, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := ParseFormat("sc8q7"); err == nil {
		t.Error("ParseFormat(sc8q7) expected error")
	}
}
