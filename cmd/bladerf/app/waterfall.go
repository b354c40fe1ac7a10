package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roman-kulish/bladerf/internal/capture"
	"github.com/roman-kulish/bladerf/internal/spectrum"
)

var waterfallOutput string

var waterfallCmd = &cobra.Command{
	Use:   "waterfall <manifest.yaml>",
	Short: "Render a waterfall image from a capture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Waterfall.Validate(); err != nil {
			return err
		}

		output := waterfallOutput
		if output == "" {
			output = imagePath(args[0], cfg.Waterfall.Format)
		}
		return renderWaterfall(cmd.Context(), args[0], output, cfg.Waterfall)
	},
}

func init() {
	flags := waterfallCmd.Flags()
	flags.StringVarP(&waterfallOutput, "output", "o", "", "output image (default: manifest name with the image extension)")
	flags.Int("fft-size", 0, "FFT size, the image width in pixels")
	flags.Int("max-rows", 0, "maximum number of rows, 0 for the whole capture")
	flags.StringP("format", "f", "", "image format: png or jpeg")
	flags.String("theme", "", "color theme: enhanced, classic, grayscale, jungle, thermal or marine")
	flags.Float64("min-power", 0, "lower end of the color scale in dBFS")
	flags.Float64("max-power", 0, "upper end of the color scale in dBFS")
	flags.Bool("no-annotations", false, "omit scales and the information bar")

	for key, name := range map[string]string{
		"waterfall.fftSize":       "fft-size",
		"waterfall.maxRows":       "max-rows",
		"waterfall.format":        "format",
		"waterfall.theme":         "theme",
		"waterfall.minPower":      "min-power",
		"waterfall.maxPower":      "max-power",
		"waterfall.noAnnotations": "no-annotations",
	} {
		bindFlag(waterfallCmd, key, name)
	}
}

func imagePath(manifest string, format ImageFormat) string {
	ext := ".png"
	if format == ImageJPEG {
		ext = ".jpg"
	}
	return strings.TrimSuffix(manifest, filepath.Ext(manifest)) + ext
}

func renderWaterfall(ctx context.Context, manifestFile, output string, config WaterfallConfig) (err error) {
	manifest, err := capture.ReadManifest(manifestFile)
	if err != nil {
		return err
	}

	file, err := os.Open(manifest.DataPath(manifestFile))
	if err != nil {
		return fmt.Errorf("error opening capture: %w", err)
	}
	defer file.Close()

	wf, err := spectrum.NewWaterfall(config.FFTSize)
	if err != nil {
		return err
	}

	logger.Info("computing spectrogram",
		slog.String("capture", file.Name()),
		slog.String("frequency", manifest.Frequency.String()),
		slog.String("sampleRate", manifest.SampleRate.String()),
		slog.Int("fftSize", config.FFTSize))

	spec, err := wf.Process(contextReader{ctx: ctx, r: file}, config.MaxRows)
	if err != nil {
		return fmt.Errorf("error computing spectrogram: %w", err)
	}

	renderer := NewWaterfallRenderer(RenderConfig{
		ColorTheme:    config.Theme,
		NoAnnotations: config.NoAnnotations,
		MinPower:      config.MinPower,
		MaxPower:      config.MaxPower,
	})

	bounds := renderer.Bounds(spec)
	logger.Info("rendering waterfall",
		slog.Group("image",
			slog.String("destination", output),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", spec.FFTSize),
			slog.Int("height", len(spec.Rows)),
			slog.String("minPower", fmt.Sprintf("%.2fdBFS", bounds.Min)),
			slog.String("maxPower", fmt.Sprintf("%.2fdBFS", bounds.Max)),
		))

	img, err := renderer.Render(spec, Capture{
		Frequency:  manifest.Frequency,
		SampleRate: manifest.SampleRate,
		Started:    manifest.Started,
	})
	if err != nil {
		return err
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	return encodeImage(out, img, config.Format)
}

func encodeImage(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case ImagePNG:
		return png.Encode(w, img)
	case ImageJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 98})
	}
	return fmt.Errorf("unsupported image format: %s", format)
}

// contextReader stops a long read loop once ctx is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
