package spectrum

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/roman-kulish/bladerf/internal/units"
)

// Spectrogram is a sequence of power spectra, oldest first. Each row holds
// FFTSize bins in dBFS with DC in the middle.
type Spectrogram struct {
	FFTSize int
	Rows    [][]float64
	Bounds  PowerBounds
}

// BinFrequency returns the absolute frequency of bin for a capture tuned to
// center at the given sample rate.
func (s *Spectrogram) BinFrequency(bin int, center units.Frequency, rate units.SampleRate) float64 {
	binWidth := rate.Sps().AsFloat64() / float64(s.FFTSize)
	return center.Hertz().AsFloat64() + float64(bin-s.FFTSize/2)*binWidth
}

// Waterfall computes Hamming windowed power spectra of fixed size.
// It is not safe for concurrent use.
type Waterfall struct {
	fftSize   int
	window    []float64
	windowSum float64
	fft       *fourier.CmplxFFT

	windowed []complex128
	coeffs   []complex128
}

func NewWaterfall(fftSize int) (*Waterfall, error) {
	if fftSize < 2 {
		return nil, fmt.Errorf("spectrum: FFT size must be at least 2: %d given", fftSize)
	}

	window := hamming(fftSize)

	var sum float64
	for _, v := range window {
		sum += v
	}

	return &Waterfall{
		fftSize:   fftSize,
		window:    window,
		windowSum: sum,
		fft:       fourier.NewCmplxFFT(fftSize),
		windowed:  make([]complex128, fftSize),
		coeffs:    make([]complex128, fftSize),
	}, nil
}

func (w *Waterfall) FFTSize() int {
	return w.fftSize
}

// Row returns the power spectrum of exactly FFTSize samples.
func (w *Waterfall) Row(samples []complex128) ([]float64, error) {
	if len(samples) != w.fftSize {
		return nil, fmt.Errorf("spectrum: expected %d samples, got %d", w.fftSize, len(samples))
	}

	for i, v := range samples {
		w.windowed[i] = v * complex(w.window[i], 0)
	}

	w.coeffs = w.fft.Coefficients(w.coeffs, w.windowed)

	norm := complex(w.windowSum, 0)
	for i := range w.coeffs {
		w.coeffs[i] /= norm
	}

	shifted := fftShift(w.coeffs)
	row := make([]float64, len(shifted))
	for i, v := range shifted {
		row[i] = dBFS(v)
	}

	return row, nil
}

// Process reads consecutive blocks of FFTSize samples from r and turns each
// into a row. Reading stops at the end of input or after maxRows rows when
// maxRows is positive. A trailing partial block is dropped.
func (w *Waterfall) Process(r io.Reader, maxRows int) (*Spectrogram, error) {
	hist := NewPowerHistogram()
	s := &Spectrogram{FFTSize: w.fftSize}

	for maxRows <= 0 || len(s.Rows) < maxRows {
		samples, err := ReadIQ(r, w.fftSize)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := w.Row(samples)
		if err != nil {
			return nil, err
		}
		for _, p := range row {
			hist.Update(p)
		}
		s.Rows = append(s.Rows, row)
	}

	s.Bounds = hist.Bounds()
	return s, nil
}
