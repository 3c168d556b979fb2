package window

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// oversample is the zero-padding factor used to resolve the window response
// between integer bins.
const oversample = 16

// Analysis holds numerically computed spectral properties of a window.
type Analysis struct {
	// CoherentGain is sum(w[n]) / N, the DC response of the window.
	CoherentGain float64
	// ENBW is the equivalent noise bandwidth in bins.
	ENBW float64
	// Bandwidth3dB is the 3 dB (half-power) main lobe width in bins.
	Bandwidth3dB float64
	// HighestSidelobedB is the highest sidelobe level relative to DC in dB.
	HighestSidelobedB float64
	// FirstMinimumBins is the first null (minimum) position in bins.
	FirstMinimumBins float64
	// ScallopLossdB is the worst-case amplitude error for an off-bin signal.
	ScallopLossdB float64
}

// Analyze computes spectral properties of the given window coefficients from
// a zero-padded FFT of the window.
func Analyze(coeffs []float64) (Analysis, error) {
	n := len(coeffs)
	if n == 0 {
		return Analysis{}, errEmptyCoeffs
	}

	enbw, err := EquivalentNoiseBandwidth(coeffs)
	if err != nil {
		return Analysis{}, err
	}

	cg, err := CoherentGain(coeffs)
	if err != nil {
		return Analysis{}, err
	}

	pad := core.NextPowerOfTwo(n) * oversample

	plan, err := algofft.NewPlan64(pad)
	if err != nil {
		return Analysis{}, fmt.Errorf("window: analysis fft plan: %w", err)
	}

	in := make([]complex128, pad)
	for i, c := range coeffs {
		in[i] = complex(c, 0)
	}

	out := make([]complex128, pad)
	if err := plan.Forward(out, in); err != nil {
		return Analysis{}, fmt.Errorf("window: analysis fft: %w", err)
	}

	half := pad/2 + 1
	magSq := make([]float64, half)
	for k := range magSq {
		re, im := real(out[k]), imag(out[k])
		magSq[k] = re*re + im*im
	}

	dc := magSq[0]
	binsPerIndex := float64(n) / float64(pad)

	firstMin := firstMinimumIndex(magSq)

	sidelobe := math.Inf(-1)
	if firstMin > 0 {
		peak := 0.0
		for _, v := range magSq[firstMin:] {
			if v > peak {
				peak = v
			}
		}
		if peak > 0 {
			sidelobe = 10 * math.Log10(peak/dc)
		}
	}

	scallop := 0.0
	if hp := dftMagSq(coeffs, 0.5/float64(n)); hp > 0 {
		scallop = 10 * math.Log10(hp/dc)
	}

	return Analysis{
		CoherentGain:      cg,
		ENBW:              enbw,
		Bandwidth3dB:      2 * halfPowerIndex(magSq) * binsPerIndex,
		HighestSidelobedB: sidelobe,
		FirstMinimumBins:  float64(firstMin) * binsPerIndex,
		ScallopLossdB:     scallop,
	}, nil
}

// firstMinimumIndex returns the index of the first local minimum of the
// one-sided response after it has dropped below 10% of DC, or 0 if none.
// The threshold keeps flat-top plateaus from being mistaken for a null.
func firstMinimumIndex(magSq []float64) int {
	threshold := magSq[0] * 0.1
	for k := 1; k < len(magSq); k++ {
		if magSq[k-1] < threshold && magSq[k] > magSq[k-1] {
			return k - 1
		}
	}
	return 0
}

// halfPowerIndex returns the fractional index where the response first falls
// to half of DC power.
func halfPowerIndex(magSq []float64) float64 {
	target := magSq[0] * 0.5
	for k := 1; k < len(magSq); k++ {
		if magSq[k] > target {
			continue
		}
		prev := magSq[k-1]
		if prev == magSq[k] {
			return float64(k)
		}
		return float64(k-1) + (prev-target)/(prev-magSq[k])
	}
	return float64(len(magSq) - 1)
}

// dftMagSq evaluates |DFT(freq)|^2 at a normalised frequency [0,1).
func dftMagSq(coeffs []float64, freq float64) float64 {
	re, im := 0.0, 0.0
	w := 2 * math.Pi * freq
	for k, c := range coeffs {
		phase := w * float64(k)
		re += c * math.Cos(phase)
		im -= c * math.Sin(phase)
	}
	return re*re + im*im
}
