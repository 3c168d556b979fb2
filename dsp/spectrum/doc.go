// Package spectrum provides helpers that operate on magnitude spectra after
// the transform: bin/frequency mapping, peak search, frame-to-frame smoothing,
// logarithmic band grouping and 8-bit quantization for texture upload.
//
// The package does not run a transform itself; see package analyzer.
package spectrum
