package features

import (
	"math"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// DefaultRolloff is the energy fraction used by Describe for RolloffHz.
const DefaultRolloff = 0.85

// Shape describes the distribution of a magnitude spectrum.
type Shape struct {
	CentroidHz float64 // magnitude-weighted mean frequency
	SpreadHz   float64 // magnitude-weighted standard deviation around the centroid
	Flatness   float64 // geometric over arithmetic mean, 0..1, DC excluded
	RolloffHz  float64 // frequency below which DefaultRolloff of the energy lies
}

// Describe computes all shape descriptors of a half spectrum as produced by
// an N-point transform (len N/2, bin k at k*sampleRate/N). A silent or empty
// spectrum yields the zero Shape.
func Describe[T core.Sample](spectrum []T, sampleRate float64) Shape {
	var sum, energy float64
	for _, v := range spectrum {
		m := float64(v)
		sum += m
		energy += m * m
	}
	if sum == 0 {
		return Shape{}
	}

	c := centroid(spectrum, sampleRate, sum)
	return Shape{
		CentroidHz: c,
		SpreadHz:   spread(spectrum, sampleRate, c, sum),
		Flatness:   Flatness(spectrum),
		RolloffHz:  rolloff(spectrum, sampleRate, DefaultRolloff, energy),
	}
}

// Centroid returns the spectral centroid in Hz.
func Centroid[T core.Sample](spectrum []T, sampleRate float64) float64 {
	var sum float64
	for _, v := range spectrum {
		sum += float64(v)
	}
	return centroid(spectrum, sampleRate, sum)
}

// Flatness returns the spectral flatness (Wiener entropy) in [0, 1]. Any
// empty bin above DC makes the geometric mean, and so the result, zero.
func Flatness[T core.Sample](spectrum []T) float64 {
	if len(spectrum) < 2 {
		return 0
	}

	var sumLin, sumLog float64
	for _, v := range spectrum[1:] {
		m := float64(v)
		if m <= 0 {
			return 0
		}
		sumLin += m
		sumLog += math.Log(m)
	}

	n := float64(len(spectrum) - 1)
	return math.Exp(sumLog/n) / (sumLin / n)
}

// Rolloff returns the lowest bin frequency at which the cumulative energy
// reaches fraction (0..1] of the total.
func Rolloff[T core.Sample](spectrum []T, sampleRate, fraction float64) float64 {
	var energy float64
	for _, v := range spectrum {
		energy += float64(v) * float64(v)
	}
	return rolloff(spectrum, sampleRate, fraction, energy)
}

func binHz(k int, sampleRate float64, bins int) float64 {
	return float64(k) * sampleRate / float64(2*bins)
}

func centroid[T core.Sample](spectrum []T, sampleRate, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	var weighted float64
	for k, v := range spectrum {
		weighted += binHz(k, sampleRate, len(spectrum)) * float64(v)
	}
	return weighted / sum
}

func spread[T core.Sample](spectrum []T, sampleRate, c, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	var acc float64
	for k, v := range spectrum {
		d := binHz(k, sampleRate, len(spectrum)) - c
		acc += d * d * float64(v)
	}
	return math.Sqrt(acc / sum)
}

func rolloff[T core.Sample](spectrum []T, sampleRate, fraction, energy float64) float64 {
	if energy == 0 || len(spectrum) == 0 {
		return 0
	}
	threshold := fraction * energy
	var cum float64
	for k, v := range spectrum {
		cum += float64(v) * float64(v)
		if cum >= threshold {
			return binHz(k, sampleRate, len(spectrum))
		}
	}
	return binHz(len(spectrum)-1, sampleRate, len(spectrum))
}
