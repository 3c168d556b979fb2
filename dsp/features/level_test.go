package features

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-spectral/internal/testutil"
)

func TestMeasureEmptyAndSilence(t *testing.T) {
	if got := Measure([]float32(nil)); got != (Level{}) {
		t.Fatalf("Measure(nil) = %+v, want zero", got)
	}

	l := Measure(make([]float64, 32))
	if l.RMS != 0 || l.CrestFactor != 0 {
		t.Fatalf("Measure(silence) = %+v", l)
	}
	if got := l.RMSdB(-120); got != -120 {
		t.Fatalf("RMSdB = %v, want floor -120", got)
	}
}

func TestMeasureSine(t *testing.T) {
	// 100 full cycles of 441 Hz at 44.1 kHz.
	block := testutil.DeterministicSine(441, 44100, 0.5, 10000)
	l := Measure(block)

	if math.Abs(l.RMS-0.5/math.Sqrt2) > 1e-4 {
		t.Fatalf("RMS = %v, want %v", l.RMS, 0.5/math.Sqrt2)
	}
	if math.Abs(l.Peak-0.5) > 1e-4 {
		t.Fatalf("Peak = %v, want 0.5", l.Peak)
	}
	if math.Abs(l.CrestFactor-math.Sqrt2) > 1e-3 {
		t.Fatalf("CrestFactor = %v, want sqrt(2)", l.CrestFactor)
	}
	if math.Abs(l.DC) > 1e-4 {
		t.Fatalf("DC = %v, want 0", l.DC)
	}
	if l.ZeroCrossings < 198 || l.ZeroCrossings > 200 {
		t.Fatalf("ZeroCrossings = %d, want ~199", l.ZeroCrossings)
	}
	if got := l.PeakdB(-120); math.Abs(got-(-6.0206)) > 1e-3 {
		t.Fatalf("PeakdB = %v, want -6.02", got)
	}
}

func TestMeasureSquare(t *testing.T) {
	block := []float32{1, -1, 1, -1, 1, -1}
	l := Measure(block)
	if l.RMS != 1 || l.Peak != 1 || l.CrestFactor != 1 || l.ZeroCrossings != 5 || l.DC != 0 {
		t.Fatalf("Measure(square) = %+v", l)
	}
}
