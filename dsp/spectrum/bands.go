package spectrum

import (
	"fmt"
	"math"
)

// LogBands groups a half spectrum (as produced by an N-point transform, len
// N/2) into len(dst) logarithmically spaced bands between fMin and fMax. Each
// band takes the maximum bin inside its range; bands narrower than one bin
// sample the nearest bin to their centre frequency. fMax is limited to
// Nyquist.
func LogBands(dst, spectrum []float32, sampleRate, fMin, fMax float64) error {
	if len(dst) == 0 || len(spectrum) == 0 {
		return fmt.Errorf("spectrum: log bands require non-empty input and output")
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("spectrum: sample rate must be > 0: %v", sampleRate)
	}

	if !(fMin > 0) || !(fMax > fMin) || math.IsInf(fMin, 0) || math.IsInf(fMax, 0) {
		return fmt.Errorf("spectrum: log bands need finite 0 < fMin < fMax: %v, %v", fMin, fMax)
	}

	nyquist := sampleRate / 2
	if fMax > nyquist {
		fMax = nyquist
	}
	if fMax <= fMin {
		return fmt.Errorf("spectrum: log bands need fMin below Nyquist: %v, %v", fMin, nyquist)
	}

	fftSize := 2 * len(spectrum)
	binHz := BinWidth(sampleRate, fftSize)
	ratio := fMax / fMin
	last := len(spectrum) - 1
	nb := float64(len(dst))

	for b := range dst {
		lo := fMin * math.Pow(ratio, float64(b)/nb)
		hi := fMin * math.Pow(ratio, float64(b+1)/nb)

		k0 := int(math.Ceil(lo / binHz))
		k1 := int(math.Floor(hi / binHz))
		if k1 > last {
			k1 = last
		}

		if k0 > k1 {
			centre := math.Sqrt(lo * hi)
			dst[b] = spectrum[FrequencyBin(centre, sampleRate, fftSize)]
			continue
		}

		peak := spectrum[k0]
		for k := k0 + 1; k <= k1; k++ {
			if spectrum[k] > peak {
				peak = spectrum[k]
			}
		}
		dst[b] = peak
	}

	return nil
}
