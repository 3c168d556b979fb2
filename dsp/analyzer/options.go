package analyzer

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-spectral/dsp/window"
)

// Scale selects how amplitudes are mapped onto [0, 1].
type Scale int

const (
	// ScaleLinear reports amplitude relative to the reference, clamped to [0, 1].
	ScaleLinear Scale = iota
	// ScaleDecibel maps the [minDB, maxDB] range onto [0, 1].
	ScaleDecibel
)

// String returns the lower-case scale name.
func (s Scale) String() string {
	switch s {
	case ScaleLinear:
		return "linear"
	case ScaleDecibel:
		return "db"
	default:
		return fmt.Sprintf("Scale(%d)", int(s))
	}
}

// ParseScale resolves "linear" or "db".
func ParseScale(name string) (Scale, error) {
	switch name {
	case "linear", "lin":
		return ScaleLinear, nil
	case "db", "decibel", "log":
		return ScaleDecibel, nil
	default:
		return 0, fmt.Errorf("%w: unknown scale %q", ErrInvalidConfiguration, name)
	}
}

// Defaults used when no option overrides them.
const (
	DefaultSampleRate = 44100.0
	DefaultReference  = 1.0
	DefaultMinDB      = -100.0
	DefaultMaxDB      = 0.0
)

// Config is the resolved analyzer configuration.
type Config struct {
	Window     window.Type
	SampleRate float64
	Scale      Scale
	Reference  float64
	MinDB      float64
	MaxDB      float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the configuration used by New without options.
func DefaultConfig() Config {
	return Config{
		Window:     window.TypeHann,
		SampleRate: DefaultSampleRate,
		Scale:      ScaleLinear,
		Reference:  DefaultReference,
		MinDB:      DefaultMinDB,
		MaxDB:      DefaultMaxDB,
	}
}

// WithWindow selects the window applied before the transform.
func WithWindow(t window.Type) Option {
	return func(cfg *Config) {
		cfg.Window = t
	}
}

// WithSampleRate sets the sample rate used for bin/frequency mapping.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		cfg.SampleRate = sampleRate
	}
}

// WithScale selects linear or decibel normalization.
func WithScale(s Scale) Option {
	return func(cfg *Config) {
		cfg.Scale = s
	}
}

// WithReference sets the linear amplitude that maps to 1.0 (or 0 dB).
func WithReference(ref float64) Option {
	return func(cfg *Config) {
		cfg.Reference = ref
	}
}

// WithDecibelRange sets the dB range mapped onto [0, 1] by ScaleDecibel.
func WithDecibelRange(minDB, maxDB float64) Option {
	return func(cfg *Config) {
		cfg.MinDB = minDB
		cfg.MaxDB = maxDB
	}
}

func applyOptions(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg Config) validate() error {
	if window.Info(cfg.Window).Name == "" {
		return fmt.Errorf("%w: unknown window type %d", ErrInvalidConfiguration, int(cfg.Window))
	}
	if !finitePositive(cfg.SampleRate) {
		return fmt.Errorf("%w: sample rate must be > 0: %v", ErrInvalidConfiguration, cfg.SampleRate)
	}
	if !finitePositive(cfg.Reference) {
		return fmt.Errorf("%w: reference must be > 0: %v", ErrInvalidConfiguration, cfg.Reference)
	}
	switch cfg.Scale {
	case ScaleLinear:
	case ScaleDecibel:
		if math.IsNaN(cfg.MinDB) || math.IsInf(cfg.MinDB, 0) || math.IsNaN(cfg.MaxDB) || math.IsInf(cfg.MaxDB, 0) {
			return fmt.Errorf("%w: decibel range must be finite: [%v, %v]", ErrInvalidConfiguration, cfg.MinDB, cfg.MaxDB)
		}
		if cfg.MinDB >= cfg.MaxDB {
			return fmt.Errorf("%w: minDB must be < maxDB: [%v, %v]", ErrInvalidConfiguration, cfg.MinDB, cfg.MaxDB)
		}
	default:
		return fmt.Errorf("%w: unknown scale %d", ErrInvalidConfiguration, int(cfg.Scale))
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
