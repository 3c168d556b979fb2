// Package analyzer converts fixed-length blocks of time-domain audio into
// normalized magnitude spectra suitable for direct use as visual intensity.
//
// An [Analyzer] is built once for a power-of-two window length and then fed
// one block per rendering frame:
//
//	a, err := analyzer.New(2048)
//	...
//	mags, err := a.Process(block) // len(mags) == 1024, values in [0, 1]
//
// # Pipeline
//
// Each call applies the configured window (periodic Hann by default), runs a
// radix-2 forward FFT and keeps the first N/2 bins; the upper half mirrors the
// lower half for real input and is discarded.
//
// # Normalization
//
// Bin magnitudes are first converted to single-sided amplitude relative to
// full scale:
//
//	amp[k] = |X[k]| * g[k] / (N * cg * ref)    g[0] = 1, g[k>0] = 2
//
// where cg is the coherent gain of the window and ref the configured
// reference (1.0 by default). A full-scale sine centred on a bin therefore
// reads 1.0. [ScaleLinear] reports clamp(amp, 0, 1). [ScaleDecibel] maps
// 20*log10(amp) from [minDB, maxDB] (default [-100, 0] dBFS) onto [0, 1] and
// clamps. The policy is fixed at construction, so frames are comparable.
//
// # Concurrency
//
// An Analyzer owns its scratch buffers and is not safe for concurrent use.
// Hosts analysing several sources create one Analyzer per source.
package analyzer
