package analyzer

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-spectral/dsp/spectrum"
	"github.com/cwbudde/algo-spectral/dsp/window"
	"github.com/cwbudde/algo-spectral/internal/testutil"
)

const testSampleRate = 44100.0

var validLengths = []int{2, 4, 8, 16, 64, 256, 1024, 2048, 4096, 8192}

func mustNew(t *testing.T, n int, opts ...Option) *Analyzer {
	t.Helper()
	a, err := New(n, opts...)
	if err != nil {
		t.Fatalf("New(%d) error: %v", n, err)
	}
	return a
}

func TestNewRejectsInvalidWindowLength(t *testing.T) {
	for _, n := range []int{0, 1, 3, 3000, 2047, -2048} {
		a, err := New(n)
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("New(%d) error = %v, want ErrInvalidConfiguration", n, err)
		}
		if a != nil {
			t.Fatalf("New(%d) returned analyzer on error", n)
		}
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero sample rate", WithSampleRate(0)},
		{"negative sample rate", WithSampleRate(-44100)},
		{"infinite sample rate", WithSampleRate(math.Inf(1))},
		{"zero reference", WithReference(0)},
		{"nan reference", WithReference(math.NaN())},
		{"unknown window", WithWindow(window.Type(42))},
		{"unknown scale", WithScale(Scale(7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(1024, tt.opt); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("error = %v, want ErrInvalidConfiguration", err)
			}
		})
	}

	_, err := New(1024, WithScale(ScaleDecibel), WithDecibelRange(0, -60))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("inverted dB range error = %v, want ErrInvalidConfiguration", err)
	}

	// The dB range is only checked when it is used.
	if _, err := New(1024, WithDecibelRange(0, -60)); err != nil {
		t.Fatalf("linear scale with unused dB range: %v", err)
	}
}

func TestZeroInputYieldsZeroSpectrum(t *testing.T) {
	for _, scale := range []Scale{ScaleLinear, ScaleDecibel} {
		for _, n := range validLengths {
			a := mustNew(t, n, WithScale(scale))

			out, err := a.Process(make([]float32, n))
			if err != nil {
				t.Fatalf("%s n=%d: Process error: %v", scale, n, err)
			}
			if len(out) != n/2 {
				t.Fatalf("%s n=%d: len=%d, want %d", scale, n, len(out), n/2)
			}
			for k, v := range out {
				if math.Abs(float64(v)) > 1e-9 {
					t.Fatalf("%s n=%d: bin %d = %v, want 0", scale, n, k, v)
				}
			}
		}
	}
}

func TestOutputLengthIndependentOfContent(t *testing.T) {
	for _, n := range validLengths {
		a := mustNew(t, n)
		inputs := [][]float32{
			testutil.DeterministicNoise(int64(n), 1, n),
			testutil.DC(0.7, n),
			testutil.Impulse(n, n/2),
			testutil.DeterministicSine(440, testSampleRate, 1, n),
		}
		for i, in := range inputs {
			out, err := a.Process(in)
			if err != nil {
				t.Fatalf("n=%d input %d: %v", n, i, err)
			}
			if len(out) != n/2 || a.Bins() != n/2 {
				t.Fatalf("n=%d input %d: len=%d bins=%d, want %d", n, i, len(out), a.Bins(), n/2)
			}
		}
	}
}

func TestProcessRejectsMismatchedLength(t *testing.T) {
	const n = 2048
	a := mustNew(t, n)

	for _, size := range []int{n - 1, n + 1, 0} {
		out, err := a.Process(make([]float32, size))
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("len=%d: error = %v, want ErrInvalidInput", size, err)
		}
		if out != nil {
			t.Fatalf("len=%d: returned spectrum on error", size)
		}
	}

	if err := a.ProcessTo(make([]float32, n/2-1), make([]float32, n)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("short dst: error = %v, want ErrInvalidInput", err)
	}

	// A rejected call leaves the analyzer usable.
	if _, err := a.Process(make([]float32, n)); err != nil {
		t.Fatalf("Process after rejected call: %v", err)
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	const n = 2048
	in := testutil.DeterministicSine(440, testSampleRate, 0.8, n)

	a := mustNew(t, n)
	first, err := a.Process(in)
	if err != nil {
		t.Fatal(err)
	}
	firstCopy := append([]float32(nil), first...)

	// Disturb the scratch buffers in between.
	if _, err := a.Process(testutil.DeterministicNoise(7, 1, n)); err != nil {
		t.Fatal(err)
	}

	second, err := a.Process(in)
	if err != nil {
		t.Fatal(err)
	}

	for k := range firstCopy {
		if firstCopy[k] != second[k] {
			t.Fatalf("bin %d differs: %v vs %v", k, firstCopy[k], second[k])
		}
	}

	// A fresh instance agrees bit for bit.
	other, err := mustNew(t, n).Process(in)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, other, firstCopy, 0)
}

func TestFrequencyLocalization(t *testing.T) {
	tests := []struct {
		n    int
		freq float64
	}{
		{2048, 440},
		{2048, 1000},
		{2048, 5000},
		{1024, 12345},
		{4096, 60},
		{512, 20000},
	}

	for _, tt := range tests {
		a := mustNew(t, tt.n, WithSampleRate(testSampleRate))
		out, err := a.Process(testutil.DeterministicSine(tt.freq, testSampleRate, 0.5, tt.n))
		if err != nil {
			t.Fatal(err)
		}

		peak, _ := spectrum.PeakBin(out)
		want := tt.freq / a.BinWidth()
		if math.Abs(float64(peak)-want) > 1 {
			t.Fatalf("n=%d f=%v: peak bin %d (%.1f Hz), want within one bin of %.2f",
				tt.n, tt.freq, peak, a.BinFrequency(peak), want)
		}
	}
}

func TestOutputAlwaysInUnitRange(t *testing.T) {
	const n = 1024
	nan := testutil.DC(0, n)
	nan[17] = float32(math.NaN())

	inputs := map[string][]float32{
		"loud noise":   testutil.DeterministicNoise(3, 10, n),
		"clipped sine": testutil.DeterministicSine(1000, testSampleRate, 4, n),
		"dc":           testutil.DC(-1, n),
		"impulse":      testutil.Impulse(n, 0),
		"nan":          nan,
	}

	for _, scale := range []Scale{ScaleLinear, ScaleDecibel} {
		for _, wt := range []window.Type{window.TypeRectangular, window.TypeHann, window.TypeFlatTop} {
			a := mustNew(t, n, WithScale(scale), WithWindow(wt))
			for name, in := range inputs {
				out, err := a.Process(in)
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", scale, wt, name, err)
				}
				testutil.RequireUnitRange(t, out)
			}
		}
	}
}

func TestFullScaleSineReadsUnity(t *testing.T) {
	const (
		n   = 1024
		bin = 64
	)

	a := mustNew(t, n)
	freq := a.BinFrequency(bin)

	for _, amp := range []float64{1, 0.5, 0.25} {
		out, err := a.Process(testutil.DeterministicSine(freq, testSampleRate, amp, n))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(float64(out[bin])-amp) > 1e-3 {
			t.Fatalf("amplitude %v: bin %d = %v", amp, bin, out[bin])
		}
	}
}

func TestDCBinUsesSingleSidedGain(t *testing.T) {
	a := mustNew(t, 256)

	out, err := a.Process(testutil.DC(0.5, 256))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(out[0])-0.5) > 1e-6 {
		t.Fatalf("DC bin = %v, want 0.5", out[0])
	}
}

func TestReferenceScaling(t *testing.T) {
	const (
		n   = 1024
		bin = 100
	)

	a := mustNew(t, n, WithReference(0.5))
	out, err := a.Process(testutil.DeterministicSine(a.BinFrequency(bin), testSampleRate, 0.25, n))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(out[bin])-0.5) > 1e-3 {
		t.Fatalf("bin %d = %v, want 0.5", bin, out[bin])
	}
}

func TestDecibelScale(t *testing.T) {
	const (
		n   = 2048
		bin = 200
	)

	tests := []struct {
		name         string
		minDB, maxDB float64
		want         float64
	}{
		{"default range", DefaultMinDB, DefaultMaxDB, 0.8},
		{"60 dB range", -60, 0, 40.0 / 60.0},
		{"above ceiling", -100, -30, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustNew(t, n, WithScale(ScaleDecibel), WithDecibelRange(tt.minDB, tt.maxDB))
			// -20 dBFS on-bin sine.
			out, err := a.Process(testutil.DeterministicSine(a.BinFrequency(bin), testSampleRate, 0.1, n))
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(float64(out[bin])-tt.want) > 1e-3 {
				t.Fatalf("bin %d = %v, want %v", bin, out[bin], tt.want)
			}
		})
	}
}

func TestImpulseSpectrumIsFlat(t *testing.T) {
	const n = 64
	a := mustNew(t, n)

	// The periodic Hann window is exactly 1 at n/2.
	out, err := a.Process(testutil.Impulse(n, n/2))
	if err != nil {
		t.Fatal(err)
	}

	want := float32(4.0 / n)
	for k := 1; k < len(out); k++ {
		if math.Abs(float64(out[k]-want)) > 1e-6 {
			t.Fatalf("bin %d = %v, want %v", k, out[k], want)
		}
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	for _, scale := range []Scale{ScaleLinear, ScaleDecibel} {
		a := mustNew(t, 2048, WithScale(scale))
		block := testutil.DeterministicSine(440, testSampleRate, 0.5, 2048)
		dst := make([]float32, a.Bins())

		allocs := testing.AllocsPerRun(50, func() {
			if _, err := a.Process(block); err != nil {
				t.Fatal(err)
			}
			if err := a.ProcessTo(dst, block); err != nil {
				t.Fatal(err)
			}
		})
		if allocs != 0 {
			t.Fatalf("%s: expected zero allocations per call, got %v", scale, allocs)
		}
	}
}

func TestProcessToIsIndependentOfProcessView(t *testing.T) {
	const n = 512
	a := mustNew(t, n)

	kept := make([]float32, a.Bins())
	if err := a.ProcessTo(kept, testutil.DeterministicSine(3000, testSampleRate, 0.5, n)); err != nil {
		t.Fatal(err)
	}
	snapshot := append([]float32(nil), kept...)

	if _, err := a.Process(testutil.DeterministicNoise(1, 1, n)); err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, kept, snapshot, 0)
}

func TestAccessors(t *testing.T) {
	a := mustNew(t, 2048, WithSampleRate(48000), WithWindow(window.TypeBlackman))

	if a.WindowLength() != 2048 || a.Bins() != 1024 {
		t.Fatalf("WindowLength=%d Bins=%d", a.WindowLength(), a.Bins())
	}
	if a.SampleRate() != 48000 {
		t.Fatalf("SampleRate=%v", a.SampleRate())
	}
	if math.Abs(a.BinWidth()-23.4375) > 1e-12 {
		t.Fatalf("BinWidth=%v", a.BinWidth())
	}
	if math.Abs(a.BinFrequency(10)-234.375) > 1e-12 {
		t.Fatalf("BinFrequency(10)=%v", a.BinFrequency(10))
	}

	if a.Window() != window.TypeBlackman {
		t.Fatalf("Window=%v", a.Window())
	}

	cfg := a.Config()
	if cfg.Window != window.TypeBlackman || cfg.Scale != ScaleLinear || cfg.Reference != DefaultReference {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseScale(t *testing.T) {
	for in, want := range map[string]Scale{"linear": ScaleLinear, "db": ScaleDecibel, "decibel": ScaleDecibel} {
		got, err := ParseScale(in)
		if err != nil || got != want {
			t.Fatalf("ParseScale(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseScale("cubic"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestIndependentInstancesPerGoroutine(t *testing.T) {
	const (
		n       = 1024
		workers = 8
		rounds  = 20
	)

	in := testutil.DeterministicSine(2500, testSampleRate, 0.5, n)
	ref, err := mustNew(t, n).Process(in)
	if err != nil {
		t.Fatal(err)
	}
	want := append([]float32(nil), ref...)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := New(n)
			if err != nil {
				errs <- err
				return
			}
			for r := 0; r < rounds; r++ {
				out, err := a.Process(in)
				if err != nil {
					errs <- err
					return
				}
				if d, _ := testutil.MaxAbsDiff(out, want); d != 0 {
					errs <- errors.New("instance diverged from reference")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatal(err)
	}
}
