package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// ErrLengthMismatch is returned when paired slices differ in length.
var ErrLengthMismatch = errors.New("spectrum: length mismatch")

// MagnitudeFromParts computes |X[k]| = sqrt(re[k]^2 + im[k]^2) into dst.
//
// This is the zero-allocation fast path for callers that already have real and
// imaginary parts in separate slices. All three slices must have the same length.
func MagnitudeFromParts(dst, re, im []float64) error {
	if len(re) != len(im) || len(dst) != len(re) {
		return fmt.Errorf("%w: dst=%d re=%d im=%d", ErrLengthMismatch, len(dst), len(re), len(im))
	}

	vecmath.Magnitude(dst, re, im)

	return nil
}

// BinWidth returns the width of one bin in Hz.
func BinWidth(sampleRate float64, fftSize int) float64 {
	if fftSize <= 0 {
		return 0
	}
	return sampleRate / float64(fftSize)
}

// BinFrequency returns the centre frequency of bin k in Hz.
func BinFrequency(k int, sampleRate float64, fftSize int) float64 {
	return float64(k) * BinWidth(sampleRate, fftSize)
}

// FrequencyBin returns the nearest bin index for freqHz, clamped to
// [0, fftSize/2-1].
func FrequencyBin(freqHz, sampleRate float64, fftSize int) int {
	width := BinWidth(sampleRate, fftSize)
	if width <= 0 {
		return 0
	}

	k := int(math.Round(freqHz / width))
	if k < 0 {
		return 0
	}
	if last := fftSize/2 - 1; k > last {
		return last
	}
	return k
}

// PeakBin returns the index and value of the largest element. Ties resolve
// to the lowest index. It returns -1 for an empty slice.
func PeakBin[T core.Sample](values []T) (int, T) {
	if len(values) == 0 {
		return -1, 0
	}

	idx := 0
	peak := values[0]
	for i := 1; i < len(values); i++ {
		if values[i] > peak {
			peak = values[i]
			idx = i
		}
	}
	return idx, peak
}

// QuantizeBytes maps normalized values in [0, 1] to bytes in [0, 255], the
// layout expected by single-channel 8-bit textures. Out-of-range values are
// clamped.
func QuantizeBytes(dst []byte, src []float32) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst=%d src=%d", ErrLengthMismatch, len(dst), len(src))
	}

	for i, v := range src {
		dst[i] = byte(math.Round(core.ClampUnit(float64(v)) * 255))
	}

	return nil
}
