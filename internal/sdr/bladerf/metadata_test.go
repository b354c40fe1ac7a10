package bladerf

import (
	"math/bits"
	"testing"
)

func TestNewRXNowFlags(t *testing.T) {
	f := NewRXNowFlags()
	if n := bits.OnesCount32(f.Bits()); n != 1 {
		t.Fatalf("expected exactly one bit set, got %d (%s)", n, f)
	}
	if f.Bits() != 1<<31 || !f.RXNow() {
		t.Errorf("expected bit 31, got %s", f)
	}
}

func TestMetaFlags_Clear(t *testing.T) {
	for _, raw := range []uint32{0, 1, 0xFFFFFFFF, 1 << 31, 0x0003000F} {
		f := MetaFlagsFromBits(raw)
		f.Clear()
		if f.Bits() != 0 {
			t.Errorf("Clear() on 0x%X left 0x%X", raw, f.Bits())
		}
	}
}

func TestMetaFlags_SettersTouchOneBit(t *testing.T) {
	setters := []struct {
		name string
		bit  uint32
		set  func(*MetaFlags, bool)
		get  func(MetaFlags) bool
	}{
		{"TXBurstStart", 1 << 0, (*MetaFlags).SetTXBurstStart, MetaFlags.TXBurstStart},
		{"TXBurstEnd", 1 << 1, (*MetaFlags).SetTXBurstEnd, MetaFlags.TXBurstEnd},
		{"TXNow", 1 << 2, (*MetaFlags).SetTXNow, MetaFlags.TXNow},
		{"TXUpdateTimestamp", 1 << 3, (*MetaFlags).SetTXUpdateTimestamp, MetaFlags.TXUpdateTimestamp},
		{"RXNow", 1 << 31, (*MetaFlags).SetRXNow, MetaFlags.RXNow},
	}

	for _, s := range setters {
		t.Run(s.name, func(t *testing.T) {
			for _, start := range []uint32{0, 0xFFFFFFFF, 0xA5A5A5A5} {
				f := MetaFlagsFromBits(start)

				s.set(&f, true)
				if f.Bits() != start|s.bit || !s.get(f) {
					t.Errorf("set on 0x%X: got 0x%X", start, f.Bits())
				}

				s.set(&f, false)
				if f.Bits() != start&^s.bit || s.get(f) {
					t.Errorf("unset on 0x%X: got 0x%X", start, f.Bits())
				}
			}
		})
	}
}

func TestMetaFlags_HardwareBits(t *testing.T) {
	f := MetaFlagsFromBits(1<<0 | 1<<17)
	if !f.RXHWUnderflow() || f.RXHWMiniexp1() || !f.RXHWMiniexp2() {
		t.Errorf("unexpected hardware bits for %s", f)
	}
	if got := f.String(); got != "0x20001" {
		t.Errorf("String() = %q", got)
	}
}

func TestMetaStatus(t *testing.T) {
	s := MetaStatusFromBits(1 << 1)
	if s.Overrun() || !s.Underrun() {
		t.Errorf("unexpected status bits %s", s)
	}
	s.Clear()
	if s.Bits() != 0 {
		t.Errorf("Clear() left %s", s)
	}
}

func TestMetadata(t *testing.T) {
	md := NewRXNowMetadata()
	if !md.Flags().RXNow() {
		t.Fatal("expected RXNow flag")
	}

	md.raw.Status = 1 << 0
	md.raw.ActualCount = 4096
	md.raw.Reserved[7] = 0xFF
	md.SetTimestamp(123)

	if !md.Status().Overrun() {
		t.Error("Status() should read the status field")
	}
	if md.Flags().Bits() != 1<<31 {
		t.Errorf("status must not leak into flags, got %s", md.Flags())
	}
	if got, want := md.String(), "t=123, actual-count=4096, flags=0x80000000, status=0x1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	md.Clear()
	if md.Timestamp() != 0 || md.Flags().Bits() != 0 || md.Status().Bits() != 0 || md.ActualCount() != 0 || md.raw.Reserved[7] != 0 {
		t.Errorf("Clear() left %s, reserved %v", md, md.raw.Reserved)
	}

	var nilMD *Metadata
	if nilMD.native() != nil {
		t.Error("nil metadata must map to a nil driver record")
	}
}
