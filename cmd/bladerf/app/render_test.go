package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/png"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roman-kulish/bladerf/internal/capture"
	"github.com/roman-kulish/bladerf/internal/sdr/bladerf"
	"github.com/roman-kulish/bladerf/internal/spectrum"
	"github.com/roman-kulish/bladerf/internal/units"
)

func TestColorMapper(t *testing.T) {
	bounds := spectrum.PowerBounds{Min: -100, Max: 0}

	for theme := range colorThemes {
		t.Run(string(theme), func(t *testing.T) {
			cm := NewColorMapper(theme, bounds)

			if len(cm.colorMap) != DefaultColorMapSize {
				t.Fatalf("color map size = %d, want %d", len(cm.colorMap), DefaultColorMapSize)
			}
			if cm.Color(-200) != cm.colorMap[0] {
				t.Error("power below the bounds should map to the first color")
			}
			if cm.Color(50) != cm.colorMap[DefaultColorMapSize-1] {
				t.Error("power above the bounds should map to the last color")
			}
			if cm.Color(math.Inf(-1)) != cm.colorMap[0] {
				t.Error("-Inf should map to the first color")
			}
			if cm.Color(math.NaN()) != cm.colorMap[0] {
				t.Error("NaN should map to the first color")
			}
		})
	}
}

func TestColorMapper_UnknownThemeFallsBack(t *testing.T) {
	bounds := spectrum.PowerBounds{Min: -100, Max: 0}
	got := NewColorMapper("neon", bounds)
	want := NewColorMapper(DefaultTheme, bounds)

	for _, p := range []float64{-100, -50, -10, 0} {
		if got.Color(p) != want.Color(p) {
			t.Errorf("Color(%.0f) differs from the default theme", p)
		}
	}
}

func testSpectrogram(width, height int) *spectrum.Spectrogram {
	s := &spectrum.Spectrogram{
		FFTSize: width,
		Bounds:  spectrum.PowerBounds{Min: -100, Max: -10, Mean: -60},
	}
	for y := 0; y < height; y++ {
		row := make([]float64, width)
		for x := range row {
			row[x] = -100 + 90*float64(x)/float64(width)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func TestWaterfallRenderer_Render(t *testing.T) {
	spec := testSpectrogram(256, 120)
	rec := Capture{Frequency: 915 * units.OneMHz, SampleRate: 2_000_000, Started: time.Now()}

	t.Run("plain", func(t *testing.T) {
		img, err := NewWaterfallRenderer(RenderConfig{NoAnnotations: true}).Render(spec, rec)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got := img.Bounds(); got.Dx() != 256 || got.Dy() != 120 {
			t.Errorf("image size = %dx%d, want 256x120", got.Dx(), got.Dy())
		}
	})

	t.Run("annotated", func(t *testing.T) {
		img, err := NewWaterfallRenderer(RenderConfig{ColorTheme: ClassicTheme}).Render(spec, rec)
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		wantW := 256 + defaultLeftBorder + defaultRightBorder
		wantH := 120 + defaultTopBorder + defaultBottomBorder
		if got := img.Bounds(); got.Dx() != wantW || got.Dy() != wantH {
			t.Errorf("image size = %dx%d, want %dx%d", got.Dx(), got.Dy(), wantW, wantH)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := NewWaterfallRenderer(RenderConfig{}).Render(&spectrum.Spectrogram{FFTSize: 16}, rec); err == nil {
			t.Error("Render() error = nil for an empty spectrogram")
		}
	})
}

func TestWaterfallRenderer_BoundsOverride(t *testing.T) {
	spec := testSpectrogram(8, 1)
	low := -80.0

	r := NewWaterfallRenderer(RenderConfig{MinPower: &low})
	got := r.Bounds(spec)
	if got.Min != -80 || got.Max != spec.Bounds.Max {
		t.Errorf("Bounds() = %+v, want min -80 and measured max", got)
	}
}

func TestCapture_RowDuration(t *testing.T) {
	c := Capture{SampleRate: 1_000_000}
	if got := c.RowDuration(1000); got != time.Millisecond {
		t.Errorf("RowDuration() = %s, want 1ms", got)
	}
	if got := (Capture{}).RowDuration(1000); got != 0 {
		t.Errorf("RowDuration() without rate = %s, want 0", got)
	}
}

func TestNiceFrequencyStep(t *testing.T) {
	tests := []struct {
		span  float64
		width int
		want  float64
	}{
		{2_000_000, 1024, 500_000},
		{2_000_000, 300, 1_000_000},
		{61_440_000, 4096, 5_000_000},
	}
	for _, tt := range tests {
		if got := niceFrequencyStep(tt.span, tt.width); got != tt.want {
			t.Errorf("niceFrequencyStep(%.0f, %d) = %.0f, want %.0f", tt.span, tt.width, got, tt.want)
		}
	}
}

func writeTone(t *testing.T, path string, n, bin, fftSize int) {
	t.Helper()
	raw := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		v := cmplx.Rect(0.5, 2*math.Pi*float64(bin)*float64(i)/float64(fftSize))
		raw = binary.LittleEndian.AppendUint16(raw, uint16(int16(real(v)*spectrum.FullScale)))
		raw = binary.LittleEndian.AppendUint16(raw, uint16(int16(imag(v)*spectrum.FullScale)))
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("failed to write capture: %v", err)
	}
}

func TestRenderWaterfall(t *testing.T) {
	dir := t.TempDir()
	const fftSize = 64

	writeTone(t, filepath.Join(dir, "run.iq"), fftSize*10, 8, fftSize)

	manifestFile := filepath.Join(dir, "run.yaml")
	err := capture.WriteManifest(manifestFile, &capture.Manifest{
		Version:    capture.ManifestVersion,
		DataFile:   "run.iq",
		Channel:    bladerf.RX0,
		Format:     bladerf.SC16Q11,
		Frequency:  100 * units.OneMHz,
		SampleRate: 1_000_000,
		Started:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	output := filepath.Join(dir, "run.png")
	config := WaterfallConfig{FFTSize: fftSize, Format: ImagePNG, Theme: DefaultTheme, NoAnnotations: true}
	if err = renderWaterfall(context.Background(), manifestFile, output, config); err != nil {
		t.Fatalf("renderWaterfall() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read image: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode image: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, fftSize, 10) {
		t.Errorf("image bounds = %v, want 64x10", got)
	}
}

func TestRenderWaterfall_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeTone(t, filepath.Join(dir, "run.iq"), 256, 1, 64)

	manifestFile := filepath.Join(dir, "run.yaml")
	err := capture.WriteManifest(manifestFile, &capture.Manifest{
		Version:    capture.ManifestVersion,
		DataFile:   "run.iq",
		Frequency:  100 * units.OneMHz,
		SampleRate: 1_000_000,
	})
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := WaterfallConfig{FFTSize: 64, Format: ImagePNG, Theme: DefaultTheme}
	err = renderWaterfall(ctx, manifestFile, filepath.Join(dir, "run.png"), config)
	if err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("renderWaterfall() error = %v, want context canceled", err)
	}
}

type fakeDescriber struct {
	name  string
	speed bladerf.DeviceSpeed
	err   error
}

func (f fakeDescriber) BoardName() (string, error)                { return f.name, f.err }
func (f fakeDescriber) DeviceSpeed() (bladerf.DeviceSpeed, error) { return f.speed, nil }
func (f fakeDescriber) DeviceInfo() (bladerf.DeviceInfo, error)   { return bladerf.DeviceInfo{}, nil }

func TestPrintInfo(t *testing.T) {
	var out bytes.Buffer
	if err := printInfo(&out, fakeDescriber{name: "bladerf2", speed: bladerf.SpeedSuper}); err != nil {
		t.Fatalf("printInfo() error = %v", err)
	}
	for _, want := range []string{"bladerf2", "SuperSpeed (USB 3.0)", "Serial:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output %q does not contain %q", out.String(), want)
		}
	}

	if err := printInfo(&out, fakeDescriber{err: bladerf.ErrNoDevice}); err == nil {
		t.Error("printInfo() error = nil, want board name error")
	}
}
