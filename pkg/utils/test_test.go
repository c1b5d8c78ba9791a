// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"testing"
)

const testSampleRate = 44100.0

func TestGenerateSineFrame(t *testing.T) {
	tests := []struct {
		name      string
		positions int
		channels  int
		frequency float64
	}{
		{"A4 Note Stereo", 256, 2, 440.0},
		{"Middle C Mono", 256, 1, 261.63},
		{"Low Frequency", 1024, 2, 60.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GenerateSineFrame(tt.positions, tt.channels, testSampleRate, tt.frequency, 1.0)

			if len(result) != tt.positions*tt.channels {
				t.Errorf("GenerateSineFrame() buffer size = %d, want %d",
					len(result), tt.positions*tt.channels)
			}

			// Every channel at a position carries the same sample.
			for i := 0; i < tt.positions; i++ {
				for c := 1; c < tt.channels; c++ {
					if result[i*tt.channels+c] != result[i*tt.channels] {
						t.Fatalf("GenerateSineFrame() channel mismatch at position %d", i)
					}
				}
			}

			hasNonZero := false
			for _, v := range result {
				if v != 0 {
					hasNonZero = true
					break
				}
			}
			if !hasNonZero {
				t.Errorf("GenerateSineFrame() produced all zeros")
			}
		})
	}
}

func TestGenerateSineFrameAmplitude(t *testing.T) {
	result := GenerateSineFrame(1024, 1, testSampleRate, 440.0, 0.5)

	peak := float32(0)
	for _, v := range result {
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}

	if peak > 0.5 || peak < 0.45 {
		t.Errorf("GenerateSineFrame() peak = %f, want close to 0.5", peak)
	}
}

func TestFindPeakIndex(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected int
	}{
		{"Empty Slice", []float64{}, -1},
		{"Single Value", []float64{1.0}, 0},
		{"Peak At Start", []float64{5.0, 1.0, 2.0}, 0},
		{"Peak At End", []float64{1.0, 2.0, 5.0}, 2},
		{"Peak In Middle", []float64{0.1, 0.9, 0.3, 0.2}, 1},
		{"Ties Keep First", []float64{0.5, 0.5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindPeakIndex(tt.values); got != tt.expected {
				t.Errorf("FindPeakIndex() = %d, want %d", got, tt.expected)
			}
		})
	}

	values := make([]float64, 1024)
	values[300] = 1.0
	allocs := testing.AllocsPerRun(100, func() {
		FindPeakIndex(values)
	})
	if allocs > 0 {
		t.Errorf("FindPeakIndex allocated memory: got %.1f allocs, want 0", allocs)
	}
}

func BenchmarkGenerateSineFrame(b *testing.B) {
	benchmarks := []struct {
		name      string
		positions int
	}{
		{"Small", 64},
		{"Standard", 256},
		{"Large", 4096},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				GenerateSineFrame(bm.positions, 2, testSampleRate, 440.0, 1.0)
			}
		})
	}
}
