// Package wavsource decodes WAV files into mono float32 blocks for offline
// analysis.
package wavsource

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-spectral/dsp/core"
)

// ErrUnsupportedFormat is returned for files that are not integer PCM WAV.
var ErrUnsupportedFormat = errors.New("wavsource: unsupported format")

const (
	wavFormatPCM        = 0x0001
	wavFormatExtensible = 0xFFFE
)

// Source is a fully decoded, downmixed WAV file.
type Source struct {
	SampleRate int
	Channels   int
	BitDepth   int

	samples []float32
}

// Open decodes the WAV file at path.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavsource: open %s: %w", path, err)
	}
	defer f.Close()

	src, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("wavsource: decode %s: %w", path, err)
	}
	return src, nil
}

// Decode reads integer PCM WAV data from r and averages all channels to mono
// in [-1, 1].
func Decode(r io.ReadSeeker) (*Source, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("%w: not a valid wav file", ErrUnsupportedFormat)
	}
	if err := checkFormat(d.WavAudioFormat, int(d.BitDepth)); err != nil {
		return nil, err
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wavsource: read pcm: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}

	bitDepth := int(d.BitDepth)
	scale := 1 / (math.Pow(2, float64(bitDepth-1)) * float64(channels))

	// 8-bit WAV is unsigned; the decoder returns raw byte values.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / channels
	mono := make([]float32, frames)
	for i := range mono {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += buf.Data[i*channels+c] - offset
		}
		mono[i] = float32(float64(sum) * scale)
	}

	return &Source{
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
		BitDepth:   bitDepth,
		samples:    mono,
	}, nil
}

// checkFormat accepts plain PCM and WAVE_FORMAT_EXTENSIBLE up to 24 bits. The
// decoder drops the extensible sub-format GUID, so 32-bit extensible data
// cannot be told apart from IEEE float and is rejected.
func checkFormat(tag uint16, bitDepth int) error {
	switch {
	case tag == wavFormatPCM:
		return nil
	case tag == wavFormatExtensible && bitDepth <= 24:
		return nil
	case tag == wavFormatExtensible:
		return fmt.Errorf("%w: %d-bit extensible wav may be float", ErrUnsupportedFormat, bitDepth)
	default:
		return fmt.Errorf("%w: wav format tag 0x%04X, want integer PCM", ErrUnsupportedFormat, tag)
	}
}

// FromSamples wraps already decoded mono samples.
func FromSamples(samples []float32, sampleRate int) *Source {
	return &Source{
		SampleRate: sampleRate,
		Channels:   1,
		BitDepth:   32,
		samples:    samples,
	}
}

// Samples returns the mono samples. The slice must not be modified.
func (s *Source) Samples() []float32 { return s.samples }

// Duration returns the playback length.
func (s *Source) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(s.samples)) / float64(s.SampleRate) * float64(time.Second))
}

// FrameCount returns how many frames Frames will deliver for hop.
func (s *Source) FrameCount(hop int) int {
	if hop <= 0 || len(s.samples) == 0 {
		return 0
	}
	return (len(s.samples) + hop - 1) / hop
}

// Frames calls fn for consecutive blocks of windowLength samples starting
// every hop samples. Blocks running past the end are zero-padded. The frame
// slice is reused between calls. Returning an error from fn stops iteration.
func (s *Source) Frames(windowLength, hop int, fn func(index, offset int, frame []float32) error) error {
	if windowLength <= 0 || hop <= 0 {
		return fmt.Errorf("wavsource: window length and hop must be > 0: %d, %d", windowLength, hop)
	}

	var frame []float32
	frame = core.EnsureLen(frame, windowLength)

	index := 0
	for offset := 0; offset < len(s.samples); offset += hop {
		n := copy(frame, s.samples[offset:])
		core.Zero(frame[n:])

		if err := fn(index, offset, frame); err != nil {
			return err
		}
		index++
	}
	return nil
}
