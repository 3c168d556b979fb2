package wavsource

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-spectral/dsp/analyzer"
	"github.com/cwbudde/algo-spectral/dsp/spectrum"
	"github.com/cwbudde/algo-spectral/internal/testutil"
)

func TestOpenDownmixesStereo16Bit(t *testing.T) {
	const (
		sampleRate = 8000
		frames     = 8000
	)
	tone := testutil.DeterministicSine(1000, sampleRate, 0.5, frames)
	path := testutil.WriteWAV(t, sampleRate, tone, tone)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	if src.SampleRate != sampleRate || src.Channels != 2 || src.BitDepth != 16 {
		t.Fatalf("unexpected format: rate=%d channels=%d depth=%d", src.SampleRate, src.Channels, src.BitDepth)
	}
	if len(src.Samples()) != frames {
		t.Fatalf("samples=%d, want %d", len(src.Samples()), frames)
	}
	if d := src.Duration(); d != time.Second {
		t.Fatalf("duration=%v, want 1s", d)
	}

	diff, err := testutil.MaxAbsDiff(src.Samples(), tone)
	if err != nil {
		t.Fatal(err)
	}
	if diff > 1e-3 {
		t.Fatalf("max diff to source tone=%v, want <= 1e-3", diff)
	}
}

func TestOpenAveragesChannels(t *testing.T) {
	left := testutil.DC(0.5, 64)
	right := testutil.DC(-0.25, 64)

	src, err := Open(testutil.WriteWAV(t, 8000, left, right))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range src.Samples() {
		if math.Abs(float64(v)-0.125) > 1e-3 {
			t.Fatalf("sample %d = %v, want ~0.125", i, v)
		}
	}
}

func TestOpenRecentres8Bit(t *testing.T) {
	// Unsigned 8-bit: 128 is silence, 0 is -1.0, 192 is +0.5.
	path := testutil.WriteWAVData(t, 8000, 8, 1, 1, []int{128, 0, 192, 64})

	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if src.BitDepth != 8 {
		t.Fatalf("BitDepth=%d, want 8", src.BitDepth)
	}
	testutil.RequireSliceNearlyEqual(t, src.Samples(), []float32{0, -1, 0.5, -0.5}, 1e-6)
}

func TestOpenAcceptsExtensibleIntegerPCM(t *testing.T) {
	path := testutil.WriteWAVData(t, 8000, 16, 2, 0xFFFE, []int{16384, 16384, -8192, -8192})

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open extensible: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, src.Samples(), []float32{0.5, -0.25}, 1e-6)
}

func TestCheckFormat(t *testing.T) {
	tests := []struct {
		name     string
		tag      uint16
		bitDepth int
		ok       bool
	}{
		{"pcm 16", 0x0001, 16, true},
		{"pcm 32", 0x0001, 32, true},
		{"extensible 24", 0xFFFE, 24, true},
		{"extensible 32", 0xFFFE, 32, false},
		{"ieee float", 0x0003, 32, false},
		{"a-law", 0x0006, 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFormat(tt.tag, tt.bitDepth)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
			}
		})
	}
}

func TestOpenFeedsAnalyzer(t *testing.T) {
	const sampleRate = 44100
	path := testutil.WriteWAV(t, sampleRate, testutil.DeterministicSine(1000, sampleRate, 0.8, 4096))

	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	an, err := analyzer.New(2048, analyzer.WithSampleRate(float64(src.SampleRate)))
	if err != nil {
		t.Fatal(err)
	}

	err = src.Frames(2048, 2048, func(index, _ int, frame []float32) error {
		out, err := an.Process(frame)
		if err != nil {
			return err
		}
		bin, _ := spectrum.PeakBin(out)
		if got := an.BinFrequency(bin); math.Abs(got-1000) > an.BinWidth() {
			t.Errorf("frame %d peak at %.1f Hz, want ~1000 Hz", index, got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a riff file")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want os.ErrNotExist", err)
	}
}

func TestFramesZeroPadsTail(t *testing.T) {
	samples := make([]float32, 10)
	for i := range samples {
		samples[i] = float32(i + 1)
	}
	src := FromSamples(samples, 100)

	if got := src.FrameCount(4); got != 3 {
		t.Fatalf("FrameCount=%d, want 3", got)
	}

	var offsets []int
	var last []float32
	err := src.Frames(4, 4, func(index, offset int, frame []float32) error {
		if index != len(offsets) {
			t.Fatalf("index=%d, want %d", index, len(offsets))
		}
		offsets = append(offsets, offset)
		last = append(last[:0], frame...)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(offsets) != 3 || offsets[2] != 8 {
		t.Fatalf("offsets=%v, want [0 4 8]", offsets)
	}
	want := []float32{9, 10, 0, 0}
	for i := range want {
		if last[i] != want[i] {
			t.Fatalf("last frame=%v, want %v", last, want)
		}
	}
}

func TestFramesOverlapAndStop(t *testing.T) {
	src := FromSamples(make([]float32, 16), 100)
	stop := errors.New("stop")

	calls := 0
	err := src.Frames(8, 2, func(_, _ int, frame []float32) error {
		if len(frame) != 8 {
			t.Fatalf("frame len=%d, want 8", len(frame))
		}
		calls++
		if calls == 3 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || calls != 3 {
		t.Fatalf("err=%v calls=%d, want stop after 3", err, calls)
	}

	if err := src.Frames(0, 2, nil); err == nil {
		t.Fatal("expected error for zero window length")
	}
}
