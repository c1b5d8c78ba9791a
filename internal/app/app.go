// SPDX-License-Identifier: MIT
/*
Package app assembles the pipeline and runs its main scheduling context:
one goroutine multiplexing the render ticker, the analyzer's data-ready
notifications, and queued commands from the outside (device switches,
viewport resizes).

All collaborator state except the two frame queues is owned by exactly
one side; the loop here is the "main context" every non-realtime
operation runs on.
*/
package app

import (
	"context"
	"errors"
	"time"

	"audiolize/internal/audio"
	"audiolize/internal/config"
	"audiolize/internal/fft"
	applog "audiolize/internal/log"
	"audiolize/internal/render"
	"audiolize/pkg/ringbuf"
)

const commandQueueSize = 8

// ErrBusy is returned when the command queue is full and a control
// operation cannot be posted to the main loop.
var ErrBusy = errors.New("main loop command queue is full")

// ErrStopped is returned when the main loop exited before it could
// service a posted control operation.
var ErrStopped = errors.New("main loop has stopped")

// Source is the capture side as the loop sees it.
type Source interface {
	OpenStream() error
	CloseStream()
	SetSelectedDevice(index int) error
	SampleRate() float64
}

// Worker is the analysis side as the loop sees it.
type Worker interface {
	Start()
	Stop()
	Notify() <-chan struct{}
}

// Renderer is the render bridge as the loop sees it.
type Renderer interface {
	OnNotify()
	OnTick()
	Resize(width, height int)
	SetSampleRate(sampleRate float64)
	ClearRedraw()
}

// App wires the capture driver, the analyzer and the render bridge
// around the two frame queues and runs the main loop.
type App struct {
	cfg *config.Config

	source   Source
	renderer Renderer

	// worker is replaced on every device switch; nil while no analyzer
	// is running.
	worker    Worker
	newWorker func(sampleRate float64) (Worker, error)

	in  *ringbuf.Queue[audio.Frame]
	out *ringbuf.Queue[fft.BandVector]

	commands chan func()

	// done is closed when Run returns, so a goroutine waiting on a
	// posted command can observe that the loop will never service it.
	done chan struct{}

	bridge *render.Bridge
}

// New builds the pipeline: both queues, the capture driver bound to the
// input queue, and the render bridge bound to the output queue. The
// stream is not opened and no analyzer is started yet.
func New(cfg *config.Config) (*App, error) {
	in := ringbuf.New[audio.Frame](cfg.QueueCapacity)
	out := ringbuf.New[fft.BandVector](cfg.QueueCapacity)

	driver, err := audio.NewDriver(cfg, in)
	if err != nil {
		return nil, err
	}

	bridge := render.NewBridge(cfg, driver.SampleRate(), out)

	return &App{
		cfg:      cfg,
		source:   driver,
		renderer: bridge,
		newWorker: func(sampleRate float64) (Worker, error) {
			return fft.NewAnalyzer(cfg, sampleRate, in, out)
		},
		in:       in,
		out:      out,
		commands: make(chan func(), commandQueueSize),
		done:     make(chan struct{}),
		bridge:   bridge,
	}, nil
}

// Bridge exposes the render bridge for the external drawing consumer
// (SetRedraw, Paint). Paint must be called from the redraw callback's
// context, which the main loop invokes.
func (a *App) Bridge() *render.Bridge {
	return a.bridge
}

// Start opens the input stream and starts an analyzer at the stream's
// sample rate. A failed analyzer construction closes the stream again.
func (a *App) Start() error {
	if err := a.source.OpenStream(); err != nil {
		return err
	}
	worker, err := a.newWorker(a.source.SampleRate())
	if err != nil {
		a.source.CloseStream()
		return err
	}
	a.worker = worker
	worker.Start()
	return nil
}

// Run is the main loop. It returns when ctx is cancelled, after shutting
// the pipeline down: analyzer first, then the stream, so the analyzer has
// stopped touching the input queue before the driver goes away.
func (a *App) Run(ctx context.Context) {
	defer applog.Debugf("main loop shutdown")
	defer close(a.done)

	interval := time.Second / time.Duration(a.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// The worker is swapped on device switches, so its channel is
		// re-read every iteration. A nil channel blocks forever, which
		// is the right behavior while no analyzer runs.
		var notify <-chan struct{}
		if a.worker != nil {
			notify = a.worker.Notify()
		}

		select {
		case <-ctx.Done():
			a.shutdown()
			return
		case <-notify:
			a.renderer.OnNotify()
		case <-ticker.C:
			// Notifications collapse while vectors pile up, so the tick
			// also checks for queued data. Keeps the queue draining even
			// when it briefly filled up and writes (and with them
			// notifications) were dropped.
			if a.out.Len() > 0 {
				a.renderer.OnNotify()
			}
			a.renderer.OnTick()
		case cmd := <-a.commands:
			cmd()
		}
	}
}

// q posts a command to the main loop without blocking.
func (a *App) q(cmd func()) bool {
	select {
	case a.commands <- cmd:
		return true
	default:
		applog.Warnf("main loop command dropped")
		return false
	}
}

// SetDevice switches the input device on the main loop and reports the
// result. Callable from any goroutine; when the loop has stopped (or
// stops before servicing the request) it returns ErrStopped instead of
// waiting on a command that will never run.
func (a *App) SetDevice(index int) error {
	result := make(chan error, 1)
	if !a.q(func() { result <- a.switchDevice(index) }) {
		return ErrBusy
	}
	select {
	case err := <-result:
		return err
	case <-a.done:
		// The loop may have serviced the command right before exiting;
		// a buffered result takes precedence over the stop signal.
		select {
		case err := <-result:
			return err
		default:
			return ErrStopped
		}
	}
}

// Resize posts a viewport change to the main loop.
func (a *App) Resize(width, height int) {
	a.q(func() { a.renderer.Resize(width, height) })
}

// switchDevice runs on the main loop: stop and join the old analyzer,
// close the stream, drop any frames captured from the old device, then
// re-open against the new device and start a fresh analyzer at its
// sample rate. On failure the pipeline stays in a safe stopped state and
// the caller may retry with another device.
func (a *App) switchDevice(index int) error {
	if a.worker != nil {
		a.worker.Stop()
		a.worker = nil
	}
	a.source.CloseStream()

	// Producer and consumer are both quiescent now.
	a.in.Reset()

	if err := a.source.SetSelectedDevice(index); err != nil {
		return err
	}

	// The new device may run at a different rate, which changes how
	// often vectors arrive; the renderer's smoothing follows suit.
	a.renderer.SetSampleRate(a.source.SampleRate())

	worker, err := a.newWorker(a.source.SampleRate())
	if err != nil {
		a.source.CloseStream()
		return err
	}
	a.worker = worker
	worker.Start()
	return nil
}

// shutdown tears the pipeline down in dependency order.
func (a *App) shutdown() {
	if a.worker != nil {
		a.worker.Stop()
		a.worker = nil
	}
	a.source.CloseStream()
	a.renderer.ClearRedraw()
}
