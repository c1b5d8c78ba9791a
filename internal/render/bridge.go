// SPDX-License-Identifier: MIT
/*
Package render turns band vectors into target bar heights and smooths the
displayed heights toward them over render ticks.

Everything in this package runs on the main scheduling context. The
analyzer thread never touches the bridge: it only enqueues vectors and
posts a notification, and the bridge drains the queue itself.
*/
package render

import (
	"image"
	"image/color"
	"image/draw"

	"audiolize/internal/config"
	"audiolize/internal/fft"
	"audiolize/pkg/ringbuf"
)

var (
	backgroundColor = color.RGBA{R: 0x16, G: 0x16, B: 0x1e, A: 0xff}
	barColor        = color.RGBA{R: 0x4e, G: 0xc9, B: 0x7a, A: 0xff}
)

// Bridge owns the render state: per-band current and target heights and
// the drawable surface. Heights persist across ticks so the bars glide
// toward their targets instead of jumping.
type Bridge struct {
	out *ringbuf.Queue[fft.BandVector]

	targets [config.NumBands]float64
	heights [config.NumBands]float64

	surface *image.RGBA
	bg      *image.Uniform
	fg      *image.Uniform

	gain     float64
	tickRate int
	skip     int

	// fpsDiff divides the distance to the target per tick. Derived from
	// the ratio of tick rate to analysis arrival rate, so the visual
	// speed self-adjusts to how often new data actually arrives.
	fpsDiff float64

	// redraw tells the external drawing consumer that the surface
	// changed. May be nil: when the consumer is gone the repaint is
	// simply skipped instead of dereferencing a dead collaborator.
	redraw func()
}

// NewBridge creates a bridge draining the given output queue, with a
// surface sized from the configuration.
func NewBridge(cfg *config.Config, sampleRate float64, out *ringbuf.Queue[fft.BandVector]) *Bridge {
	b := &Bridge{
		out:      out,
		gain:     cfg.Gain,
		tickRate: cfg.TickRate,
		skip:     cfg.SkipFactor,
		bg:       image.NewUniform(backgroundColor),
		fg:       image.NewUniform(barColor),
	}
	b.SetSampleRate(sampleRate)
	b.Resize(cfg.SurfaceWidth, cfg.SurfaceHeight)
	return b
}

// SetSampleRate recomputes the smoothing divisor for a new capture rate.
// Call after a device switch, when the vector arrival rate changes.
func (b *Bridge) SetSampleRate(sampleRate float64) {
	fpsDiff := float64(b.tickRate) * (config.FramesPerBuffer / sampleRate) * float64(b.skip)
	if fpsDiff < 1 {
		// Below 1 the step would overshoot past the target.
		fpsDiff = 1
	}
	b.fpsDiff = fpsDiff
}

// FPSDiff returns the smoothing divisor in use.
func (b *Bridge) FPSDiff() float64 {
	return b.fpsDiff
}

// SetRedraw attaches the external drawing consumer's redraw signal.
func (b *Bridge) SetRedraw(fn func()) {
	b.redraw = fn
}

// ClearRedraw detaches the drawing consumer. Call during teardown so a
// late notification cannot reach a destroyed collaborator.
func (b *Bridge) ClearRedraw() {
	b.redraw = nil
}

// OnNotify handles one data-ready notification: it drains at most one
// band vector and converts it into target heights scaled to the surface.
// Draining one record per notification keeps notification count and
// vector count in step; leftover vectors are picked up by later
// notifications.
func (b *Bridge) OnNotify() {
	var vec fft.BandVector
	if !b.out.Read(&vec) {
		return
	}

	limit := float64(b.surface.Bounds().Dy())
	for i, amp := range vec {
		h := amp * b.gain * limit
		if h > limit {
			h = limit
		}
		b.targets[i] = h
	}
}

// OnTick advances each displayed height toward its target by
// (target-current)/fpsDiff, repaints the surface and signals the drawing
// consumer. Driven by the application scheduler at the configured rate.
func (b *Bridge) OnTick() {
	for i := range b.heights {
		b.heights[i] += (b.targets[i] - b.heights[i]) / b.fpsDiff
	}

	b.repaint()

	if b.redraw != nil {
		b.redraw()
	}
}

// Resize replaces the drawable surface with one sized to the new
// viewport and clears it. Heights and targets are pixel values, so both
// are rescaled into the new coordinate space; otherwise the first ticks
// after a resize would ease toward bars sized for the old surface. The
// analyzer is unaffected: it shares nothing with the bridge but the
// queue.
func (b *Bridge) Resize(width, height int) {
	if b.surface != nil {
		if oldHeight := b.surface.Bounds().Dy(); oldHeight > 0 && height != oldHeight {
			scale := float64(height) / float64(oldHeight)
			for i := range b.targets {
				b.targets[i] *= scale
				b.heights[i] *= scale
			}
		}
	}
	b.surface = image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(b.surface, b.surface.Bounds(), b.bg, image.Point{}, draw.Src)
}

// Paint copies the current surface content into an externally supplied
// drawing destination. Read-only with respect to render state.
func (b *Bridge) Paint(dst draw.Image, width, height int) {
	draw.Draw(dst, image.Rect(0, 0, width, height), b.surface, image.Point{}, draw.Src)
}

// Heights returns a copy of the displayed bar heights.
func (b *Bridge) Heights() [config.NumBands]float64 {
	return b.heights
}

// Targets returns a copy of the current target heights.
func (b *Bridge) Targets() [config.NumBands]float64 {
	return b.targets
}

// repaint clears the surface and draws one bar per band sized to its
// current height, anchored at the bottom edge.
func (b *Bridge) repaint() {
	bounds := b.surface.Bounds()
	draw.Draw(b.surface, bounds, b.bg, image.Point{}, draw.Src)

	w, h := bounds.Dx(), bounds.Dy()
	barWidth := w / config.NumBands
	if barWidth < 1 {
		return
	}

	for i, height := range b.heights {
		hpx := int(height)
		if hpx > h {
			hpx = h
		}
		if hpx < 1 {
			continue
		}

		x0 := i * barWidth
		x1 := x0 + barWidth - 1 // 1px gap between bars
		if x1 > w {
			x1 = w
		}
		bar := image.Rect(x0, h-hpx, x1, h)
		draw.Draw(b.surface, bar, b.fg, image.Point{}, draw.Src)
	}
}
