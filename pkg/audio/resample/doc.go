// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts audio between different sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling, and keeps exact phase across
// calls so a stream fed in fixed-size chunks never drifts.
//
// Example:
//
//	r := resample.New(44100, 48000, 2)
//	out := make([]int16, r.MaxOutputSamples(len(in)))
//	n := r.Resample(in, out)
package resample
