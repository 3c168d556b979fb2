package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes channels (one slice per channel, equal lengths) as 16-bit
// PCM into a file under t.TempDir and returns its path.
func WriteWAV(t testing.TB, sampleRate int, channels ...[]float32) string {
	t.Helper()

	if len(channels) == 0 {
		t.Fatal("WriteWAV: no channels")
	}
	frames := len(channels[0])
	data := make([]int, frames*len(channels))
	for c, ch := range channels {
		if len(ch) != frames {
			t.Fatalf("WriteWAV: channel %d has %d samples, want %d", c, len(ch), frames)
		}
		for i, v := range ch {
			data[i*len(channels)+c] = int(math.Round(math.Max(-1, math.Min(1, float64(v))) * 32767))
		}
	}

	return WriteWAVData(t, sampleRate, 16, len(channels), 1, data)
}

// WriteWAVData encodes interleaved integer samples as they are stored on
// disk (8-bit data is unsigned) with the given WAV format tag.
func WriteWAVData(t testing.TB, sampleRate, bitDepth, channels, formatTag int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("WriteWAVData: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, formatTag)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("WriteWAVData: encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("WriteWAVData: close: %v", err)
	}
	return path
}
