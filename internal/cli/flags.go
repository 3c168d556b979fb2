package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/cwbudde/algo-spectral/dsp/analyzer"
	"github.com/cwbudde/algo-spectral/dsp/window"
)

// analyzerFlags are the analyzer settings shared by analyze and bars.
type analyzerFlags struct {
	windowLength int
	window       string
	scale        string
	reference    float64
	minDB        float64
	maxDB        float64
	smoothing    float64
}

func (f *analyzerFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.windowLength, "window-length", "n", 2048,
		"samples per analysis block (power of two)")
	fs.StringVarP(&f.window, "window", "w", window.TypeHann.String(),
		"window function applied before the FFT")
	fs.StringVar(&f.scale, "scale", analyzer.ScaleLinear.String(),
		"output scale (linear, db)")
	fs.Float64Var(&f.reference, "reference", analyzer.DefaultReference,
		"linear amplitude mapped to 1.0")
	fs.Float64Var(&f.minDB, "min-db", analyzer.DefaultMinDB,
		"level mapped to 0 in decibel scale")
	fs.Float64Var(&f.maxDB, "max-db", analyzer.DefaultMaxDB,
		"level mapped to 1 in decibel scale")
	fs.Float64Var(&f.smoothing, "smoothing", 0,
		"per-bin smoothing time constant in [0, 1)")
}

// options resolves the flags into analyzer options for the given sample rate.
func (f *analyzerFlags) options(sampleRate float64) ([]analyzer.Option, error) {
	wt, err := window.Parse(f.window)
	if err != nil {
		return nil, fmt.Errorf("--window: %w", err)
	}
	scale, err := analyzer.ParseScale(f.scale)
	if err != nil {
		return nil, fmt.Errorf("--scale: %w", err)
	}

	return []analyzer.Option{
		analyzer.WithWindow(wt),
		analyzer.WithSampleRate(sampleRate),
		analyzer.WithScale(scale),
		analyzer.WithReference(f.reference),
		analyzer.WithDecibelRange(f.minDB, f.maxDB),
	}, nil
}
