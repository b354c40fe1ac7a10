package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/roman-kulish/bladerf/internal/spectrum"
	"github.com/roman-kulish/bladerf/internal/units"
)

const (
	dpi            = 120.0
	fontSize       = 10.0
	tickMarkHeight = 5
	pixelsPerLabel = 150.0
	pixelsPerTick  = 100

	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	defaultDatetimeFormat = time.DateTime
)

// BorderConfig is the white space around the waterfall.
type BorderConfig struct {
	Top    int // frequency scale
	Left   int // time scale
	Bottom int // information bar
	Right  int
}

type RenderConfig struct {
	ColorTheme     ColorTheme
	Location       *time.Location
	DatetimeFormat string
	FontSize       float64
	NoAnnotations  bool

	// MinPower and MaxPower override the bounds measured over the capture.
	MinPower *float64
	MaxPower *float64

	BorderConfig BorderConfig
}

// Capture is what the renderer needs to know about the recording behind a
// spectrogram.
type Capture struct {
	Frequency  units.Hertz
	SampleRate units.Sps
	Started    time.Time
}

// RowDuration is the time covered by one spectrogram row.
func (c Capture) RowDuration(fftSize int) time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(fftSize) / c.SampleRate.AsFloat64() * float64(time.Second))
}

type WaterfallRenderer struct {
	config RenderConfig
}

func NewWaterfallRenderer(config RenderConfig) *WaterfallRenderer {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.DatetimeFormat == "" {
		config.DatetimeFormat = defaultDatetimeFormat
	}
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.NoAnnotations {
		config.BorderConfig = BorderConfig{}
	} else {
		if config.BorderConfig.Top == 0 {
			config.BorderConfig.Top = defaultTopBorder
		}
		if config.BorderConfig.Left == 0 {
			config.BorderConfig.Left = defaultLeftBorder
		}
		if config.BorderConfig.Bottom == 0 {
			config.BorderConfig.Bottom = defaultBottomBorder
		}
		if config.BorderConfig.Right == 0 {
			config.BorderConfig.Right = defaultRightBorder
		}
	}

	return &WaterfallRenderer{config: config}
}

// Bounds returns the power range the colors are spread over.
func (r *WaterfallRenderer) Bounds(spec *spectrum.Spectrogram) spectrum.PowerBounds {
	bounds := spec.Bounds
	if r.config.MinPower != nil {
		bounds.Min = *r.config.MinPower
	}
	if r.config.MaxPower != nil {
		bounds.Max = *r.config.MaxPower
	}
	return bounds
}

// Render draws one pixel per bin horizontally and one per row vertically,
// oldest row at the top.
func (r *WaterfallRenderer) Render(spec *spectrum.Spectrogram, capture Capture) (*image.RGBA, error) {
	if len(spec.Rows) == 0 {
		return nil, fmt.Errorf("rendering waterfall: spectrogram is empty")
	}

	borders := r.config.BorderConfig
	width, height := spec.FFTSize, len(spec.Rows)

	img := image.NewRGBA(image.Rect(0, 0, width+borders.Left+borders.Right, height+borders.Top+borders.Bottom))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	if !r.config.NoAnnotations {
		ann, err := newAnnotator(r.config)
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, spec, capture); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	area := image.Rect(borders.Left, borders.Top, borders.Left+width, borders.Top+height)
	colors := NewColorMapper(r.config.ColorTheme, r.Bounds(spec))
	for y, row := range spec.Rows {
		for x, power := range row {
			img.Set(area.Min.X+x, area.Min.Y+y, colors.Color(power))
		}
	}

	return img, nil
}

type annotator struct {
	context  *freetype.Context
	config   RenderConfig
	fontFace font.Face
}

func newAnnotator(config RenderConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	return a.fontFace.Close()
}

func (a *annotator) annotate(img *image.RGBA, spec *spectrum.Spectrogram, capture Capture) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *spectrum.Spectrogram, Capture) error
	}{
		{"drawing frequency scale", a.drawFrequencyScale},
		{"drawing time scale", a.drawTimeScale},
		{"drawing info bar", a.drawInfoBar},
	}
	for _, op := range ops {
		if err := op.fn(img, spec, capture); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}

	return nil
}

func (a *annotator) fontHeight() int {
	metrics := a.fontFace.Metrics()
	return (metrics.Ascent + metrics.Descent).Round()
}

func (a *annotator) drawFrequencyScale(img *image.RGBA, spec *spectrum.Spectrogram, capture Capture) error {
	minFreq := spec.BinFrequency(0, capture.Frequency, capture.SampleRate)
	maxFreq := spec.BinFrequency(spec.FFTSize, capture.Frequency, capture.SampleRate)
	if maxFreq <= minFreq {
		return nil
	}

	step := niceFrequencyStep(maxFreq-minFreq, spec.FFTSize)
	textY := a.config.BorderConfig.Top - a.fontHeight()/2

	for freq := math.Ceil(minFreq/step) * step; freq <= maxFreq; freq += step {
		ratio := (freq - minFreq) / (maxFreq - minFreq)
		x := a.config.BorderConfig.Left + int(ratio*float64(spec.FFTSize))

		for y := a.config.BorderConfig.Top - tickMarkHeight; y < a.config.BorderConfig.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := formatFrequency(freq)
		width := font.MeasureString(a.fontFace, label).Round()
		if _, err := a.context.DrawString(label, freetype.Pt(x-width/2, textY)); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) drawTimeScale(img *image.RGBA, spec *spectrum.Spectrogram, capture Capture) error {
	rowDuration := capture.RowDuration(spec.FFTSize)
	descent := a.fontFace.Metrics().Descent.Round()

	for y := 0; y < len(spec.Rows); y += pixelsPerTick {
		imgY := a.config.BorderConfig.Top + y

		for x := a.config.BorderConfig.Left - tickMarkHeight; x < a.config.BorderConfig.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		label := formatOffset(time.Duration(y) * rowDuration)
		if _, err := a.context.DrawString(label, freetype.Pt(10, imgY+a.fontHeight()/2-descent)); err != nil {
			return err
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, spec *spectrum.Spectrogram, capture Capture) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Center: %s; Rate: %s", formatFrequency(capture.Frequency.AsFloat64()), capture.SampleRate)
	if !capture.Started.IsZero() {
		fmt.Fprintf(&sb, "; Start: %s", capture.Started.In(a.config.Location).Format(a.config.DatetimeFormat))
	}
	fmt.Fprintf(&sb, "; 1px = %s x %s",
		formatFrequency(capture.SampleRate.AsFloat64()/float64(spec.FFTSize)),
		capture.RowDuration(spec.FFTSize))

	descent := a.fontFace.Metrics().Descent.Round()
	textY := img.Bounds().Max.Y - (a.config.BorderConfig.Bottom-a.fontHeight())/2 - descent

	_, err := a.context.DrawString(sb.String(), freetype.Pt(a.config.BorderConfig.Left, textY))
	return err
}

func niceFrequencyStep(span float64, width int) float64 {
	target := span / (float64(width) / pixelsPerLabel)
	for step := 1.0; step <= 1e10; step *= 10 {
		for _, m := range []float64{1, 2, 5} {
			if step*m >= target {
				return step * m
			}
		}
	}
	return span / 2
}

func formatFrequency(freq float64) string {
	return humanize.SIWithDigits(freq, 3, "Hz")
}

func formatOffset(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("+%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("+%dms", d.Milliseconds())
	}
	return fmt.Sprintf("+%dus", d.Microseconds())
}
