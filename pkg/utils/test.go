// SPDX-License-Identifier: MIT
// Package utils holds shared test helpers: synthetic signal generation
// and result inspection. Not for use on the hot path.
package utils

import "math"

// GenerateSineFrame returns one interleaved frame of positions×channels
// float32 samples carrying a pure sine of the given frequency and
// amplitude on every channel.
func GenerateSineFrame(positions, channels int, sampleRate, frequency, amplitude float64) []float32 {
	buf := make([]float32, positions*channels)
	for i := 0; i < positions; i++ {
		t := float64(i) / sampleRate
		s := float32(amplitude * math.Sin(2*math.Pi*frequency*t))
		for c := 0; c < channels; c++ {
			buf[i*channels+c] = s
		}
	}
	return buf
}

// FindPeakIndex returns the index of the largest value in values, or -1
// for an empty slice.
func FindPeakIndex(values []float64) int {
	if len(values) == 0 {
		return -1
	}
	peak := 0
	for i, v := range values {
		if v > values[peak] {
			peak = i
		}
	}
	return peak
}
