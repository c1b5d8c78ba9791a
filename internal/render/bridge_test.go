// SPDX-License-Identifier: MIT
package render

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"audiolize/internal/config"
	"audiolize/internal/fft"
	"audiolize/pkg/ringbuf"
)

func newTestBridge(t *testing.T, tickRate, skip int) (*Bridge, *ringbuf.Queue[fft.BandVector]) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.TickRate = tickRate
	cfg.SkipFactor = skip
	cfg.Gain = 1.0
	cfg.SurfaceWidth = 70
	cfg.SurfaceHeight = 100

	out := ringbuf.New[fft.BandVector](4)
	return NewBridge(cfg, 44100, out), out
}

func TestFPSDiff(t *testing.T) {
	// 60 ticks/s against 44100/256 analysis frames/s is below 1 and
	// must be clamped so smoothing cannot overshoot.
	b, _ := newTestBridge(t, 60, 1)
	assert.Equal(t, 1.0, b.FPSDiff())

	// With skip factor 12 data arrives ~14x slower than ticks.
	b, _ = newTestBridge(t, 60, 12)
	assert.InDelta(t, 60*(256.0/44100)*12, b.FPSDiff(), 1e-9)
}

func TestSetSampleRateRecomputesFPSDiff(t *testing.T) {
	b, _ := newTestBridge(t, 60, 12)
	assert.InDelta(t, 60*(256.0/44100)*12, b.FPSDiff(), 1e-9)

	// Switching to a faster device shortens the inter-vector gap and the
	// smoothing divisor follows.
	b.SetSampleRate(96000)
	assert.InDelta(t, 60*(256.0/96000)*12, b.FPSDiff(), 1e-9)

	// The clamp applies to the recomputed value too.
	b, _ = newTestBridge(t, 60, 1)
	b.SetSampleRate(96000)
	assert.Equal(t, 1.0, b.FPSDiff())
}

func TestOnNotifyScalesTargets(t *testing.T) {
	b, out := newTestBridge(t, 60, 1)

	out.Write(fft.BandVector{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 2.0})
	b.OnNotify()

	targets := b.Targets()
	assert.InDelta(t, 10.0, targets[0], 1e-9)
	assert.InDelta(t, 60.0, targets[5], 1e-9)
	// Amplitudes beyond the surface clamp to its height.
	assert.Equal(t, 100.0, targets[6])
}

func TestOnNotifyEmptyQueue(t *testing.T) {
	b, _ := newTestBridge(t, 60, 1)

	b.OnNotify()
	assert.Equal(t, [config.NumBands]float64{}, b.Targets())
}

func TestOnNotifyDrainsOneVector(t *testing.T) {
	b, out := newTestBridge(t, 60, 1)

	out.Write(fft.BandVector{0.1, 0, 0, 0, 0, 0, 0})
	out.Write(fft.BandVector{0.9, 0, 0, 0, 0, 0, 0})

	b.OnNotify()
	assert.InDelta(t, 10.0, b.Targets()[0], 1e-9, "first vector applied")
	assert.Equal(t, 1, out.Len(), "second vector left for the next notification")

	b.OnNotify()
	assert.InDelta(t, 90.0, b.Targets()[0], 1e-9)
}

func TestSmoothingConvergesWithoutOvershoot(t *testing.T) {
	b, out := newTestBridge(t, 60, 12) // fpsDiff ~4.18

	out.Write(fft.BandVector{0.8, 0, 0, 0, 0, 0, 0})
	b.OnNotify()
	target := b.Targets()[0]

	prev := 0.0
	for i := 0; i < 500; i++ {
		b.OnTick()
		h := b.Heights()[0]
		if h < prev {
			t.Fatalf("height decreased at tick %d: %g -> %g", i, prev, h)
		}
		if h > target+1e-9 {
			t.Fatalf("height overshot target at tick %d: %g > %g", i, h, target)
		}
		prev = h
	}
	assert.InDelta(t, target, prev, 1e-6, "height converges to the target")
}

func TestOnTickNilRedraw(t *testing.T) {
	b, _ := newTestBridge(t, 60, 1)
	// No drawing consumer attached: the tick must not fail.
	b.OnTick()
}

func TestRedrawGuard(t *testing.T) {
	b, out := newTestBridge(t, 60, 1)

	calls := 0
	b.SetRedraw(func() { calls++ })
	b.OnTick()
	assert.Equal(t, 1, calls)

	// Detached consumer, as during UI teardown: no further calls, and a
	// pending notification still just updates targets.
	b.ClearRedraw()
	out.Write(fft.BandVector{0.5, 0, 0, 0, 0, 0, 0})
	b.OnNotify()
	b.OnTick()
	assert.Equal(t, 1, calls)
}

func TestRepaintDrawsBars(t *testing.T) {
	b, out := newTestBridge(t, 60, 1)

	out.Write(fft.BandVector{1.0, 0, 0, 0, 0, 0, 0}) // first band at full height
	b.OnNotify()
	b.OnTick() // fpsDiff 1: height reaches the target in one tick

	// Inside the first bar, near the bottom.
	assert.Equal(t, barColor, b.surface.RGBAAt(2, 99))
	// Second band has zero height, its column stays background.
	assert.Equal(t, backgroundColor, b.surface.RGBAAt(12, 99))
}

func TestResizeReplacesAndClears(t *testing.T) {
	b, out := newTestBridge(t, 60, 1)

	out.Write(fft.BandVector{1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0})
	b.OnNotify()
	b.OnTick()

	b.Resize(35, 50)
	bounds := b.surface.Bounds()
	assert.Equal(t, 35, bounds.Dx())
	assert.Equal(t, 50, bounds.Dy())
	assert.Equal(t, backgroundColor, b.surface.RGBAAt(2, 49), "surface cleared after resize")
}

func TestResizeRescalesHeights(t *testing.T) {
	b, out := newTestBridge(t, 60, 1)

	out.Write(fft.BandVector{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5})
	b.OnNotify()
	b.OnTick()
	assert.InDelta(t, 50.0, b.Targets()[0], 1e-9)
	assert.InDelta(t, 50.0, b.Heights()[0], 1e-9)

	// Heights are pixel values; doubling the surface height must double
	// them, or the next ticks would ease toward bars half their size.
	b.Resize(70, 200)
	assert.InDelta(t, 100.0, b.Targets()[0], 1e-9)
	assert.InDelta(t, 100.0, b.Heights()[0], 1e-9)
}

func TestPaintCopiesSurface(t *testing.T) {
	b, out := newTestBridge(t, 60, 1)

	out.Write(fft.BandVector{1.0, 0, 0, 0, 0, 0, 0})
	b.OnNotify()
	b.OnTick()

	dst := image.NewRGBA(image.Rect(0, 0, 70, 100))
	b.Paint(dst, 70, 100)

	assert.Equal(t, b.surface.RGBAAt(2, 99), dst.RGBAAt(2, 99))
	assert.Equal(t, b.surface.RGBAAt(12, 99), dst.RGBAAt(12, 99))

	// Paint must not disturb render state.
	heights := b.Heights()
	b.Paint(dst, 70, 100)
	assert.Equal(t, heights, b.Heights())
}
