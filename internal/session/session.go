// Package session keeps independent analyzer instances behind integer
// handles so that a host with several audio sources (or a JavaScript caller
// that cannot hold Go pointers) never shares one analyzer between them.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-spectral/dsp/analyzer"
	"github.com/cwbudde/algo-spectral/dsp/spectrum"
)

// ErrUnknownHandle is returned for handles that were never opened or are closed.
var ErrUnknownHandle = errors.New("session: unknown handle")

// Handle identifies one open analyzer. Zero is never issued.
type Handle uint32

// Options configures a session beyond the analyzer itself.
type Options struct {
	// Smoothing is the per-bin exponential smoothing time constant in [0, 1).
	// Zero disables smoothing.
	Smoothing float64
}

type entry struct {
	mu       sync.Mutex
	analyzer *analyzer.Analyzer
	smoother *spectrum.Smoother
	bytes    []byte
}

// Registry owns the open sessions. The zero value is ready to use.
//
// The registry map is guarded by a mutex; each session additionally has its
// own lock so that a misbehaving caller issuing concurrent calls on one
// handle cannot corrupt that analyzer's scratch memory.
type Registry struct {
	mu       sync.RWMutex
	next     Handle
	sessions map[Handle]*entry
}

// Open creates an analyzer for windowLength and returns its handle.
func (r *Registry) Open(windowLength int, opts Options, aopts ...analyzer.Option) (Handle, error) {
	a, err := analyzer.New(windowLength, aopts...)
	if err != nil {
		return 0, err
	}

	e := &entry{
		analyzer: a,
		bytes:    make([]byte, a.Bins()),
	}
	if opts.Smoothing != 0 {
		s, err := spectrum.NewSmoother(a.Bins(), opts.Smoothing)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", analyzer.ErrInvalidConfiguration, err)
		}
		e.smoother = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions == nil {
		r.sessions = make(map[Handle]*entry)
	}
	r.next++
	h := r.next
	r.sessions[h] = e

	return h, nil
}

// Process runs one block through the session's analyzer (and smoother, if
// configured). The returned slice belongs to the session and is valid until
// the next call on the same handle.
func (r *Registry) Process(h Handle, samples []float32) ([]float32, error) {
	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.process(samples)
}

// ProcessBytes is Process followed by 8-bit quantization, the layout used for
// single-channel texture uploads.
func (r *Registry) ProcessBytes(h Handle, samples []float32) ([]byte, error) {
	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out, err := e.process(samples)
	if err != nil {
		return nil, err
	}
	if err := spectrum.QuantizeBytes(e.bytes, out); err != nil {
		return nil, err
	}
	return e.bytes, nil
}

// Analyzer returns the analyzer behind h for read-only queries such as
// BinFrequency.
func (r *Registry) Analyzer(h Handle) (*analyzer.Analyzer, error) {
	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	return e.analyzer, nil
}

// Close releases the session. Closing an unknown handle returns ErrUnknownHandle.
func (r *Registry) Close(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[h]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	delete(r.sessions, h)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(h Handle) (*entry, error) {
	r.mu.RLock()
	e, ok := r.sessions[h]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return e, nil
}

func (e *entry) process(samples []float32) ([]float32, error) {
	out, err := e.analyzer.Process(samples)
	if err != nil {
		return nil, err
	}
	if e.smoother == nil {
		return out, nil
	}
	return e.smoother.Apply(out)
}
