package features

import (
	"math"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// Level summarizes the amplitude of one sample block.
type Level struct {
	RMS           float64
	Peak          float64 // max |x|
	DC            float64 // mean
	CrestFactor   float64 // Peak / RMS, 0 for silence
	ZeroCrossings int
}

// Measure computes the Level of block in a single pass.
func Measure[T core.Sample](block []T) Level {
	if len(block) == 0 {
		return Level{}
	}

	var sum, sumSq, peak float64
	crossings := 0
	prev := float64(block[0])
	for i, v := range block {
		x := float64(v)
		sum += x
		sumSq += x * x
		if a := math.Abs(x); a > peak {
			peak = a
		}
		if i > 0 && prev*x < 0 {
			crossings++
		}
		prev = x
	}

	n := float64(len(block))
	l := Level{
		RMS:           math.Sqrt(sumSq / n),
		Peak:          peak,
		DC:            sum / n,
		ZeroCrossings: crossings,
	}
	if l.RMS > 0 {
		l.CrestFactor = l.Peak / l.RMS
	}
	return l
}

// RMSdB returns the RMS level in dBFS, never below floor.
func (l Level) RMSdB(floor float64) float64 {
	return math.Max(core.LinearToDB(l.RMS), floor)
}

// PeakdB returns the peak level in dBFS, never below floor.
func (l Level) PeakdB(floor float64) float64 {
	return math.Max(core.LinearToDB(l.Peak), floor)
}
