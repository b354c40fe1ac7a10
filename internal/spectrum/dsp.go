package spectrum

import (
	"math"
	"math/cmplx"
)

// hamming returns a Hamming window of length n.
func hamming(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	win := make([]float64, n)
	if n == 1 {
		win[0] = 1
		return win
	}
	for i := 0; i < n; i++ {
		win[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return win
}

// fftShift moves the DC bin to the centre of the spectrum.
func fftShift(data []complex128) []complex128 {
	n := len(data)
	half := n / 2
	shifted := make([]complex128, 0, n)
	shifted = append(shifted, data[half:]...)
	return append(shifted, data[:half]...)
}

// dBFS converts a normalised magnitude to decibels relative to full scale.
func dBFS(v complex128) float64 {
	mag := cmplx.Abs(v)
	if mag == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}
