package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-spectral/dsp/analyzer"
	"github.com/cwbudde/algo-spectral/dsp/spectrum"
	"github.com/cwbudde/algo-spectral/internal/wavsource"
)

const (
	defaultBands = 24
	defaultWidth = 48
	defaultFMin  = 20.0
	defaultFMax  = 20000.0
)

type barsFlags struct {
	at    time.Duration
	bands int
	width int
	fMin  float64
	fMax  float64
}

func newBarsCommand(a *app) *cobra.Command {
	var (
		af analyzerFlags
		bf barsFlags
	)

	cmd := &cobra.Command{
		Use:   "bars <file.wav>",
		Short: "Draw log-spaced spectrum bars for one moment of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.bars(cmd.OutOrStdout(), args[0], &af, &bf)
		},
	}

	af.register(cmd.Flags())
	cmd.Flags().DurationVar(&bf.at, "at", 0, "time offset of the analyzed block")
	cmd.Flags().IntVar(&bf.bands, "bands", defaultBands, "number of bars")
	cmd.Flags().IntVar(&bf.width, "width", defaultWidth, "maximum bar width in characters")
	cmd.Flags().Float64Var(&bf.fMin, "fmin", defaultFMin, "lowest band edge in Hz")
	cmd.Flags().Float64Var(&bf.fMax, "fmax", defaultFMax, "highest band edge in Hz (limited to Nyquist)")

	return cmd
}

func (a *app) bars(w io.Writer, path string, af *analyzerFlags, bf *barsFlags) error {
	if bf.bands < 1 || bf.width < 1 {
		return fmt.Errorf("--bands and --width must be >= 1: %d, %d", bf.bands, bf.width)
	}

	src, err := wavsource.Open(path)
	if err != nil {
		return err
	}

	opts, err := af.options(float64(src.SampleRate))
	if err != nil {
		return err
	}
	an, err := analyzer.New(af.windowLength, opts...)
	if err != nil {
		return err
	}

	samples := src.Samples()
	offset := int(bf.at.Seconds() * float64(src.SampleRate))
	if offset < 0 || offset >= len(samples) {
		return fmt.Errorf("--at %v is outside the file (%v)", bf.at, src.Duration())
	}

	block := make([]float32, af.windowLength)
	copy(block, samples[offset:])

	out, err := an.Process(block)
	if err != nil {
		return err
	}

	levels := make([]float32, bf.bands)
	if err := spectrum.LogBands(levels, out, an.SampleRate(), bf.fMin, bf.fMax); err != nil {
		return err
	}

	a.log.Debug("rendering bars",
		zap.Int("offset", offset),
		zap.Int("bands", bf.bands),
	)

	return renderBars(w, levels, bandEdges(bf.fMin, math.Min(bf.fMax, an.SampleRate()/2), bf.bands), bf.width)
}

// bandEdges returns the lower edge of each log-spaced band.
func bandEdges(fMin, fMax float64, bands int) []float64 {
	edges := make([]float64, bands)
	ratio := fMax / fMin
	for b := range edges {
		edges[b] = fMin * math.Pow(ratio, float64(b)/float64(bands))
	}
	return edges
}

func renderBars(w io.Writer, levels []float32, edges []float64, width int) error {
	for i, v := range levels {
		n := int(math.Round(float64(v) * float64(width)))
		bar := strings.Repeat("#", n) + strings.Repeat(" ", width-n)
		if _, err := fmt.Fprintf(w, "%8.0f Hz |%s| %.3f\n", edges[i], bar, v); err != nil {
			return err
		}
	}
	return nil
}
