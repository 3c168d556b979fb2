package spectrum

import (
	"fmt"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// Smoother applies per-bin exponential averaging across frames:
//
//	out[k] = tau*prev[k] + (1-tau)*in[k]
//
// tau matches the smoothingTimeConstant of a Web Audio AnalyserNode. The first
// frame after construction or Reset passes through unchanged. A Smoother owns
// its state and must not be shared between goroutines.
type Smoother struct {
	tau    float32
	state  []float32
	primed bool
}

// NewSmoother creates a smoother for frames of the given bin count.
// timeConstant must be in [0, 1).
func NewSmoother(bins int, timeConstant float64) (*Smoother, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("spectrum: smoother bins must be > 0: %d", bins)
	}
	if !(timeConstant >= 0 && timeConstant < 1) {
		return nil, fmt.Errorf("spectrum: smoothing time constant must be in [0,1): %v", timeConstant)
	}

	return &Smoother{
		tau:   float32(timeConstant),
		state: make([]float32, bins),
	}, nil
}

// Apply folds frame into the running average and returns the smoothed frame.
// The returned slice is owned by the Smoother and is overwritten by the next
// call.
func (s *Smoother) Apply(frame []float32) ([]float32, error) {
	if len(frame) != len(s.state) {
		return nil, fmt.Errorf("%w: smoother expects %d bins, got %d", ErrLengthMismatch, len(s.state), len(frame))
	}

	if !s.primed {
		copy(s.state, frame)
		s.primed = true
		return s.state, nil
	}

	keep := s.tau
	take := 1 - keep
	for k, v := range frame {
		s.state[k] = keep*s.state[k] + take*v
	}

	return s.state, nil
}

// Reset discards the running average.
func (s *Smoother) Reset() {
	core.Zero(s.state)
	s.primed = false
}

// Bins returns the frame length the smoother accepts.
func (s *Smoother) Bins() int { return len(s.state) }
