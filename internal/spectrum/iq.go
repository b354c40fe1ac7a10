// Package spectrum turns raw SC16 Q11 captures into power spectra.
package spectrum

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FullScale is the magnitude of a full scale Q11 sample.
const FullScale = 2048.0

const bytesPerSample = 4

// ReadIQ reads up to n interleaved little-endian I/Q samples from r and scales
// them to [-1, 1). It returns io.EOF when no samples are left, and a short
// slice together with io.ErrUnexpectedEOF when the input ends mid-block.
func ReadIQ(r io.Reader, n int) ([]complex128, error) {
	if n <= 0 {
		return nil, fmt.Errorf("spectrum: invalid sample count %d", n)
	}

	raw := make([]byte, n*bytesPerSample)
	read, err := io.ReadFull(r, raw)
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("reading samples: %w", err)
	}

	samples := decodeIQ(raw[:read-read%bytesPerSample])
	if err != nil {
		return samples, io.ErrUnexpectedEOF
	}
	return samples, nil
}

func decodeIQ(raw []byte) []complex128 {
	out := make([]complex128, len(raw)/bytesPerSample)
	for k := range out {
		i := int16(binary.LittleEndian.Uint16(raw[k*bytesPerSample:]))
		q := int16(binary.LittleEndian.Uint16(raw[k*bytesPerSample+2:]))
		out[k] = complex(float64(i)/FullScale, float64(q)/FullScale)
	}
	return out
}
