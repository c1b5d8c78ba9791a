// SPDX-License-Identifier: MIT
/*
Package fft implements the spectrum analysis stage of the pipeline: a
fixed-size real-input transform plus a non-linear frequency-band mapping,
and the background worker that runs it against the input frame queue.

The per-frame algorithm is deterministic: downmix the interleaved
channels, transform, take per-bin amplitudes, then max-pool contiguous
bin ranges into one value per configured band. Max-pooling rather than
averaging keeps transient peaks visible.
*/
package fft

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"audiolize/internal/audio"
	"audiolize/internal/config"
	"audiolize/pkg/bitint"
)

// BandVector is one spectrum analysis result: amplitudes for the
// configured frequency bands in ascending frequency order.
type BandVector [config.NumBands]float64

// Processor holds the transform plan and pre-allocated buffers for
// analyzing one audio frame at a time. Plan creation allocates, so a
// Processor must be built before the worker loop starts and reused for
// every frame. Not safe for concurrent use; the pipeline has exactly one
// worker per Processor.
type Processor struct {
	sampleRate float64

	plan    *fourier.FFT
	samples []float64    // downmixed real input
	coeffs  []complex128 // transform output, frames/2+1 bins

	// Inclusive bin ranges per band, precomputed from the band table.
	// A band narrower than one bin at this sample rate has lo > hi and
	// always yields zero.
	bandLo [config.NumBands]int
	bandHi [config.NumBands]int
}

// NewProcessor builds the transform plan and band mapping for the given
// sample rate using the configured band table. It fails fast on invalid
// geometry; a failed Processor is never used.
func NewProcessor(sampleRate float64) (*Processor, error) {
	return newProcessor(config.FramesPerBuffer, config.NyquistBins, sampleRate, config.BandBoundaries[:])
}

func newProcessor(frames, nyquistBins int, sampleRate float64, boundaries []float64) (*Processor, error) {
	if frames != 2*nyquistBins {
		return nil, fmt.Errorf("frame size %d does not match %d bins, need frames == 2*bins", frames, nyquistBins)
	}
	if !bitint.IsPowerOfTwo(frames) {
		return nil, fmt.Errorf("frame size must be a power of 2, got %d", frames)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	if len(boundaries) != config.NumBands {
		return nil, fmt.Errorf("band table has %d boundaries, expected %d", len(boundaries), config.NumBands)
	}
	for i, f := range boundaries {
		if f <= 0 || (i > 0 && f <= boundaries[i-1]) {
			return nil, fmt.Errorf("band boundaries must be positive and ascending, got %v", boundaries)
		}
	}

	p := &Processor{
		sampleRate: sampleRate,
		plan:       fourier.NewFFT(frames),
		samples:    make([]float64, frames),
		coeffs:     make([]complex128, frames/2+1),
	}

	// Boundary f maps to bin floor(f * frames / sampleRate). Band 0 runs
	// from bin 0 up to its own boundary, each following band from the
	// previous boundary (exclusive) up to its own (inclusive), and the
	// last band extends to the Nyquist bin so content above the final
	// boundary is not lost.
	fsN := float64(frames) / sampleRate
	for i := range config.NumBands {
		lo := 0
		if i > 0 {
			lo = binOf(boundaries[i-1], fsN) + 1
		}
		hi := binOf(boundaries[i], fsN)
		if i == config.NumBands-1 || hi > nyquistBins-1 {
			hi = nyquistBins - 1
		}
		p.bandLo[i], p.bandHi[i] = lo, hi
	}

	return p, nil
}

func binOf(freq, fsN float64) int {
	return int(freq * fsN)
}

// SampleRate returns the sample rate the plan was built for.
func (p *Processor) SampleRate() float64 {
	return p.sampleRate
}

// BandRange returns the inclusive bin range pooled into band i.
func (p *Processor) BandRange(i int) (lo, hi int) {
	return p.bandLo[i], p.bandHi[i]
}

// Analyze runs the per-frame algorithm on one interleaved audio frame and
// stores the band amplitudes in out. Allocation free.
func (p *Processor) Analyze(frame *audio.Frame, out *BandVector) {
	// Downmix: average the interleaved channels per sample position.
	// The channels are averaged rather than taking one side, so a
	// single-sided signal still registers at half amplitude.
	for i := range p.samples {
		var sum float64
		for c := range config.Channels {
			sum += float64(frame[i*config.Channels+c])
		}
		p.samples[i] = sum / config.Channels
	}

	p.plan.Coefficients(p.coeffs, p.samples)

	// Per-bin amplitude is |X_k| / frames; each band keeps the maximum
	// over its bin range.
	n := float64(len(p.samples))
	for b := range config.NumBands {
		peak := 0.0
		for k := p.bandLo[b]; k <= p.bandHi[b]; k++ {
			if amp := cmplx.Abs(p.coeffs[k]) / n; amp > peak {
				peak = amp
			}
		}
		out[b] = peak
	}
}
