package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-spectral/dsp/features"
	"github.com/cwbudde/algo-spectral/dsp/spectrum"
	"github.com/cwbudde/algo-spectral/internal/session"
	"github.com/cwbudde/algo-spectral/internal/wavsource"
)

// levelFloorDB bounds reported levels so that silent frames stay encodable.
const levelFloorDB = -120

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		af  analyzerFlags
		hop int
	)

	cmd := &cobra.Command{
		Use:   "analyze <file.wav>",
		Short: "Report the spectral peak of every analysis frame",
		Long: `analyze decodes a PCM WAV file, mixes it down to mono and runs it
through the analyzer block by block. Each row reports the loudest bin of one
frame. Blocks are taken every --hop samples (default half a window); the final
block is zero-padded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.analyze(args[0], &af, hop)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), a.outputFormat, r)
		},
	}

	af.register(cmd.Flags())
	cmd.Flags().IntVar(&hop, "hop", 0, "samples between frame starts (0 means window-length/2)")

	return cmd
}

func (a *app) analyze(path string, af *analyzerFlags, hop int) (*report, error) {
	start := time.Now()

	src, err := wavsource.Open(path)
	if err != nil {
		return nil, err
	}
	a.log.Info("decoded input",
		zap.String("file", path),
		zap.Int("sample_rate", src.SampleRate),
		zap.Int("channels", src.Channels),
		zap.Int("bit_depth", src.BitDepth),
		zap.Duration("duration", src.Duration()),
	)

	opts, err := af.options(float64(src.SampleRate))
	if err != nil {
		return nil, err
	}

	var reg session.Registry
	h, err := reg.Open(af.windowLength, session.Options{Smoothing: af.smoothing}, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reg.Close(h) }()

	an, err := reg.Analyzer(h)
	if err != nil {
		return nil, err
	}

	if hop == 0 {
		hop = max(af.windowLength/2, 1)
	}
	if hop < 0 {
		return nil, fmt.Errorf("--hop must be >= 0: %d", hop)
	}

	cfg := an.Config()
	r := &report{
		File:         filepath.Base(path),
		SampleRate:   src.SampleRate,
		Channels:     src.Channels,
		DurationSec:  src.Duration().Seconds(),
		WindowLength: an.WindowLength(),
		Hop:          hop,
		Window:       cfg.Window.String(),
		Scale:        cfg.Scale.String(),
		BinWidthHz:   an.BinWidth(),
		Frames:       make([]frameResult, 0, src.FrameCount(hop)),
	}

	err = src.Frames(af.windowLength, hop, func(index, offset int, frame []float32) error {
		level := features.Measure(frame)

		out, err := reg.Process(h, frame)
		if err != nil {
			return fmt.Errorf("frame %d: %w", index, err)
		}

		bin, peak := spectrum.PeakBin(out)
		sum := float32(0)
		for _, v := range out {
			sum += v
		}

		r.Frames = append(r.Frames, frameResult{
			Index:      index,
			TimeSec:    float64(offset) / float64(src.SampleRate),
			PeakBin:    bin,
			PeakHz:     an.BinFrequency(bin),
			Peak:       peak,
			Mean:       sum / float32(len(out)),
			CentroidHz: features.Centroid(out, an.SampleRate()),
			Flatness:   features.Flatness(out),
			RMSdBFS:    level.RMSdB(levelFloorDB),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("analysis complete",
		zap.Int("frames", len(r.Frames)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}
