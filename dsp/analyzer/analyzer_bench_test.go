package analyzer

import (
	"testing"

	"github.com/cwbudde/algo-spectral/internal/testutil"
)

func BenchmarkProcess(b *testing.B) {
	sizes := []struct {
		name string
		size int
	}{
		{"256", 256},
		{"1K", 1024},
		{"2K", 2048},
		{"8K", 8192},
	}

	for _, tc := range sizes {
		b.Run(tc.name, func(b *testing.B) {
			a, err := New(tc.size)
			if err != nil {
				b.Fatal(err)
			}
			in := testutil.DeterministicNoise(1, 0.5, tc.size)

			b.SetBytes(int64(tc.size * 4))
			b.ReportAllocs()
			b.ResetTimer()

			for range b.N {
				if _, err := a.Process(in); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkProcessDecibel(b *testing.B) {
	a, err := New(2048, WithScale(ScaleDecibel))
	if err != nil {
		b.Fatal(err)
	}
	in := testutil.DeterministicNoise(2, 0.5, 2048)
	out := make([]float32, a.Bins())

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		if err := a.ProcessTo(out, in); err != nil {
			b.Fatal(err)
		}
	}
}
