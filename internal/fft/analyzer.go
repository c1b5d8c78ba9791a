// SPDX-License-Identifier: MIT
package fft

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"audiolize/internal/audio"
	"audiolize/internal/config"
	applog "audiolize/internal/log"
	"audiolize/pkg/ringbuf"
)

// defaultPollInterval bounds how long the worker sleeps when the input
// queue is empty. Short enough that cancellation is always observed
// promptly, long enough not to peg a core.
const defaultPollInterval = 500 * time.Microsecond

// Analyzer is the long-lived background worker: it pulls frames from the
// input queue, analyzes every Nth one, pushes band vectors into the
// output queue and posts a payload-free notification after each
// successful push. It references the queues but owns neither.
type Analyzer struct {
	proc *Processor

	in  *ringbuf.Queue[audio.Frame]
	out *ringbuf.Queue[BandVector]

	// notify has capacity 1 and is written with a non-blocking send, so
	// any number of pending notifications collapse to "there is data".
	notify chan struct{}

	skip       uint64
	poll       time.Duration
	framesRead atomic.Uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAnalyzer builds the transform plan and worker state. Plan and buffer
// allocation happen here, before the loop starts; a construction error is
// fatal to the analyzer and it is never started.
func NewAnalyzer(cfg *config.Config, sampleRate float64, in *ringbuf.Queue[audio.Frame], out *ringbuf.Queue[BandVector]) (*Analyzer, error) {
	if cfg.SkipFactor < 1 {
		return nil, fmt.Errorf("skip factor must be at least 1, got %d", cfg.SkipFactor)
	}

	proc, err := NewProcessor(sampleRate)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		proc:   proc,
		in:     in,
		out:    out,
		notify: make(chan struct{}, 1),
		skip:   uint64(cfg.SkipFactor),
		poll:   defaultPollInterval,
	}, nil
}

// Notify returns the data-ready channel. The renderer side drains the
// output queue itself; the notification carries no payload.
func (a *Analyzer) Notify() <-chan struct{} {
	return a.notify
}

// FramesRead returns the number of frames consumed from the input queue.
func (a *Analyzer) FramesRead() uint64 {
	return a.framesRead.Load()
}

// Start launches the worker goroutine. Call at most once per Analyzer.
func (a *Analyzer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.wg.Add(1)
	go a.run(ctx)
	applog.Debugf("analyzer started (skip factor %d, %.0f Hz)", a.skip, a.proc.SampleRate())
}

// Stop cancels the worker and waits for it to exit. Only after Stop
// returns may the queues or the processor's buffers be released. No
// timeout: the loop body is short and observes cancellation every
// iteration. Safe to call when never started or already stopped.
func (a *Analyzer) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	a.wg.Wait()
	a.cancel = nil
	applog.Debugf("analyzer stopped after %d frames", a.framesRead.Load())
}

func (a *Analyzer) run(ctx context.Context) {
	defer a.wg.Done()

	var frame audio.Frame
	var vec BandVector
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !a.in.Read(&frame) {
			// Nothing queued: back off briefly instead of spinning.
			// Cancellation is re-checked on the next iteration.
			time.Sleep(a.poll)
			continue
		}

		n := a.framesRead.Load()
		a.framesRead.Store(n + 1)
		if n%a.skip != 0 {
			continue
		}

		a.proc.Analyze(&frame, &vec)

		// A full output queue drops the vector, same policy as capture:
		// the renderer is never waited on.
		if a.out.Write(vec) {
			select {
			case a.notify <- struct{}{}:
			default:
			}
		}
	}
}
