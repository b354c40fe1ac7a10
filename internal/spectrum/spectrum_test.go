package spectrum

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"math/cmplx"
	"testing"

	"github.com/roman-kulish/bladerf/internal/units"
)

func encodeIQ(samples []complex128) []byte {
	var buf bytes.Buffer
	for _, s := range samples {
		_ = binary.Write(&buf, binary.LittleEndian, int16(math.Round(real(s)*FullScale)))
		_ = binary.Write(&buf, binary.LittleEndian, int16(math.Round(imag(s)*FullScale)))
	}
	return buf.Bytes()
}

func tone(n, bin int, amplitude float64) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(amplitude, 0) * cmplx.Exp(complex(0, 2*math.Pi*float64(bin*i)/float64(n)))
	}
	return out
}

func TestReadIQ(t *testing.T) {
	raw := []byte{
		0x00, 0x04, 0x00, 0xF8, // 1024, -2048
		0xFF, 0x07, 0x00, 0x00, // 2047, 0
		0x01, 0x00, // truncated sample
	}

	r := bytes.NewReader(raw)
	samples, err := ReadIQ(r, 4)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0] != complex(0.5, -1) {
		t.Errorf("sample 0 = %v", samples[0])
	}
	if samples[1] != complex(2047.0/2048.0, 0) {
		t.Errorf("sample 1 = %v", samples[1])
	}

	if _, err = ReadIQ(r, 4); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
	if _, err = ReadIQ(r, 0); err == nil {
		t.Error("expected error for zero count")
	}
}

func TestWaterfall_Row(t *testing.T) {
	const n = 64

	w, err := NewWaterfall(n)
	if err != nil {
		t.Fatalf("NewWaterfall: %v", err)
	}

	row, err := w.Row(tone(n, 4, 1))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}

	peak := 0
	for i := range row {
		if row[i] > row[peak] {
			peak = i
		}
	}
	if peak != n/2+4 {
		t.Errorf("peak at bin %d, want %d", peak, n/2+4)
	}
	if math.Abs(row[peak]) > 1e-9 {
		t.Errorf("full scale tone = %f dBFS, want 0", row[peak])
	}

	row, err = w.Row(tone(n, -8, 0.1))
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if got := row[n/2-8]; math.Abs(got-(-20)) > 1e-9 {
		t.Errorf("-20 dBFS tone = %f", got)
	}

	row, _ = w.Row(make([]complex128, n))
	if !math.IsInf(row[n/2], -1) {
		t.Errorf("silence = %f, want -Inf", row[n/2])
	}

	if _, err = w.Row(make([]complex128, n-1)); err == nil {
		t.Error("expected size error")
	}
}

func TestNewWaterfall_InvalidSize(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if _, err := NewWaterfall(n); err == nil {
			t.Errorf("NewWaterfall(%d) expected error", n)
		}
	}
}

func TestWaterfall_Process(t *testing.T) {
	const n = 32

	var samples []complex128
	for i := 0; i < 3; i++ {
		samples = append(samples, tone(n, i+1, 0.5)...)
	}
	samples = append(samples, tone(n/2, 0, 0.5)...) // partial block
	raw := encodeIQ(samples)

	w, _ := NewWaterfall(n)

	s, err := w.Process(bytes.NewReader(raw), 0)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(s.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(s.Rows))
	}
	for i, row := range s.Rows {
		if len(row) != n {
			t.Fatalf("row %d has %d bins", i, len(row))
		}
		peak := 0
		for j := range row {
			if row[j] > row[peak] {
				peak = j
			}
		}
		if peak != n/2+i+1 {
			t.Errorf("row %d peak at %d, want %d", i, peak, n/2+i+1)
		}
	}
	if s.Bounds.Min >= s.Bounds.Max {
		t.Errorf("unexpected bounds %+v", s.Bounds)
	}

	s, err = w.Process(bytes.NewReader(raw), 2)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(s.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(s.Rows))
	}
}

func TestSpectrogram_BinFrequency(t *testing.T) {
	s := &Spectrogram{FFTSize: 1024}
	center := units.MegaHertz(915)
	rate := units.Sps(2_000_000)

	tests := []struct {
		bin  int
		want float64
	}{
		{512, 915e6},
		{0, 914e6},
		{1023, 915e6 + 511*2e6/1024},
	}

	for _, tt := range tests {
		if got := s.BinFrequency(tt.bin, center, rate); math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("BinFrequency(%d) = %f, want %f", tt.bin, got, tt.want)
		}
	}
}

func TestPowerHistogram_Bounds(t *testing.T) {
	h := NewPowerHistogram()
	for i := 0; i < 10; i++ {
		h.Update(-50)
	}
	if got := h.Bounds(); got != defaultPowerBounds() {
		t.Errorf("expected defaults below minimum count, got %+v", got)
	}

	h.Update(math.Inf(-1))
	h.Update(math.NaN())
	if h.Count() != 10 {
		t.Errorf("non-finite values counted: %d", h.Count())
	}

	for i := 0; i < 100; i++ {
		h.Update(-90 + float64(i%60))
	}
	b := h.Bounds()
	if b.Max-b.Min < 30 {
		t.Errorf("range narrower than 30 dB: %+v", b)
	}
	if b.Min > -90 || b.Max < -35 {
		t.Errorf("bounds do not cover the data: %+v", b)
	}
	if b.Mean < b.Min || b.Mean > b.Max {
		t.Errorf("mean outside bounds: %+v", b)
	}
}
