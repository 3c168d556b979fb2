// Package features derives compact descriptors from analyzer output and
// sample blocks: spectral shape (centroid, spread, flatness, rolloff) and
// block level (RMS, peak, crest factor, DC, zero crossings).
//
// All functions are allocation-free and accept float32 or float64 data.
package features
