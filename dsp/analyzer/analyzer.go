package analyzer

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-spectral/dsp/core"
	"github.com/cwbudde/algo-spectral/dsp/spectrum"
	"github.com/cwbudde/algo-spectral/dsp/window"
)

// MinWindowLength is the smallest accepted window length; it yields one bin.
const MinWindowLength = 2

// floorAmplitude keeps log10 finite for silent bins in decibel scale.
const floorAmplitude = 1e-12

// Analyzer turns fixed-length sample blocks into normalized magnitude spectra.
//
// All buffers are allocated by New and reused by every Process call.
type Analyzer struct {
	cfg  Config
	size int

	plan *algofft.Plan[complex128]

	coeffs []float64 // window, len size
	gains  []float64 // per-bin amplitude scale, len size/2

	frame []float64    // windowed samples, len size
	in    []complex128 // transform input, len size
	out   []complex128 // transform output, len size
	re    []float64    // len size/2
	im    []float64    // len size/2
	mag   []float64    // len size/2

	result []float32 // view returned by Process, len size/2

	dbOffset float64
	dbScale  float64
}

// New creates an analyzer for blocks of windowLength samples.
//
// windowLength must be a power of two >= MinWindowLength; anything else fails
// with ErrInvalidConfiguration rather than being rounded.
func New(windowLength int, opts ...Option) (*Analyzer, error) {
	if windowLength < MinWindowLength || !core.IsPowerOfTwo(windowLength) {
		return nil, fmt.Errorf("%w: window length must be a power of two >= %d: %d",
			ErrInvalidConfiguration, MinWindowLength, windowLength)
	}

	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(windowLength)
	if err != nil {
		return nil, fmt.Errorf("%w: fft plan for %d points: %v", ErrInvalidConfiguration, windowLength, err)
	}

	coeffs := window.Generate(cfg.Window, windowLength, window.WithPeriodic())

	cg, err := window.CoherentGain(coeffs)
	if err != nil || cg <= 0 {
		return nil, fmt.Errorf("%w: window %s has no coherent gain", ErrInvalidConfiguration, cfg.Window)
	}

	bins := windowLength / 2
	gains := make([]float64, bins)
	norm := 1 / (float64(windowLength) * cg * cfg.Reference)
	for k := range gains {
		gains[k] = 2 * norm
	}
	gains[0] = norm

	a := &Analyzer{
		cfg:    cfg,
		size:   windowLength,
		plan:   plan,
		coeffs: coeffs,
		gains:  gains,
		frame:  make([]float64, windowLength),
		in:     make([]complex128, windowLength),
		out:    make([]complex128, windowLength),
		re:     make([]float64, bins),
		im:     make([]float64, bins),
		mag:    make([]float64, bins),
		result: make([]float32, bins),
	}

	if cfg.Scale == ScaleDecibel {
		a.dbOffset = -cfg.MinDB
		a.dbScale = 1 / (cfg.MaxDB - cfg.MinDB)
	}

	return a, nil
}

// Process analyses one block and returns its normalized spectrum.
//
// len(samples) must equal WindowLength(). The returned slice has Bins()
// values in [0, 1]; it is owned by the analyzer and overwritten by the next
// Process call. Use ProcessTo to keep results across calls.
func (a *Analyzer) Process(samples []float32) ([]float32, error) {
	if err := a.ProcessTo(a.result, samples); err != nil {
		return nil, err
	}
	return a.result, nil
}

// ProcessTo analyses one block into dst, which must hold exactly Bins() values.
func (a *Analyzer) ProcessTo(dst, samples []float32) error {
	if len(samples) != a.size {
		return fmt.Errorf("%w: expected %d samples, got %d", ErrInvalidInput, a.size, len(samples))
	}
	if len(dst) != len(a.mag) {
		return fmt.Errorf("%w: expected output of %d bins, got %d", ErrInvalidInput, len(a.mag), len(dst))
	}

	if err := a.transform(samples); err != nil {
		return err
	}

	switch a.cfg.Scale {
	case ScaleDecibel:
		for k, m := range a.mag {
			db := 20 * math.Log10(math.Max(m, floorAmplitude))
			dst[k] = float32(core.ClampUnit((db + a.dbOffset) * a.dbScale))
		}
	default:
		for k, m := range a.mag {
			dst[k] = float32(core.ClampUnit(m))
		}
	}

	return nil
}

// transform fills a.mag with reference-relative single-sided amplitudes.
func (a *Analyzer) transform(samples []float32) error {
	for i, s := range samples {
		a.frame[i] = float64(s)
	}

	vecmath.MulBlockInPlace(a.frame, a.coeffs)

	for i, x := range a.frame {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return fmt.Errorf("analyzer: forward fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.out[k])
		a.im[k] = imag(a.out[k])
	}

	if err := spectrum.MagnitudeFromParts(a.mag, a.re, a.im); err != nil {
		return fmt.Errorf("analyzer: %w", err)
	}

	vecmath.MulBlockInPlace(a.mag, a.gains)

	return nil
}

// WindowLength returns the number of samples expected per block.
func (a *Analyzer) WindowLength() int { return a.size }

// Bins returns the spectrum length, WindowLength()/2.
func (a *Analyzer) Bins() int { return len(a.mag) }

// Config returns the resolved configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Window returns the window function applied before the transform.
func (a *Analyzer) Window() window.Type { return a.cfg.Window }

// SampleRate returns the configured sample rate in Hz.
func (a *Analyzer) SampleRate() float64 { return a.cfg.SampleRate }

// BinWidth returns the frequency resolution in Hz.
func (a *Analyzer) BinWidth() float64 {
	return spectrum.BinWidth(a.cfg.SampleRate, a.size)
}

// BinFrequency returns the centre frequency of bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 {
	return spectrum.BinFrequency(k, a.cfg.SampleRate, a.size)
}
