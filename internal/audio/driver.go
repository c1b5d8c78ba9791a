// SPDX-License-Identifier: MIT
package audio

import (
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"

	"audiolize/internal/config"
	applog "audiolize/internal/log"
	"audiolize/pkg/ringbuf"
)

// ErrDeviceIndexOutOfRange indicates a device selection outside the
// enumerated device list.
var ErrDeviceIndexOutOfRange = errors.New("device index is out of range")

// Driver owns the audio input stream and converts hardware callback
// invocations into input queue writes. All methods run on the main
// context; only the stream callback runs on the backend's thread.
type Driver struct {
	devices    []*portaudio.DeviceInfo
	selected   int
	lowLatency bool

	stream *portaudio.Stream

	// in is referenced, not owned: the pipeline creates it and hands it
	// to both the driver (producer) and the analyzer (consumer).
	in *ringbuf.Queue[Frame]

	// scratch receives the hardware buffer before the single queue write.
	// Pre-allocated so the callback never allocates.
	scratch Frame
}

// NewDriver enumerates the host devices and prepares a driver bound to
// the given input queue. deviceID -1 selects the system default input
// device. No stream is opened yet.
func NewDriver(cfg *config.Config, in *ringbuf.Queue[Frame]) (*Driver, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, errors.Wrap(err, "failed to enumerate devices")
	}
	if len(infos) == 0 {
		return nil, ErrNoDevicesFound
	}

	selected := cfg.DeviceID
	if selected == config.DefaultDeviceID {
		def, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, errors.Wrap(err, "no default input device")
		}
		selected = 0
		for i, info := range infos {
			if info == def {
				selected = i
				break
			}
		}
	}
	if selected < 0 || selected >= len(infos) {
		return nil, errors.Wrapf(ErrDeviceIndexOutOfRange, "device %d", selected)
	}

	for i, info := range infos {
		applog.Debugf("device %02d: %s", i, info.Name)
	}

	return &Driver{
		devices:    infos,
		selected:   selected,
		lowLatency: cfg.LowLatency,
		in:         in,
	}, nil
}

// Selected returns the index of the currently selected device.
func (d *Driver) Selected() int {
	return d.selected
}

// SampleRate returns the default sample rate of the selected device,
// which is the rate any open stream runs at.
func (d *Driver) SampleRate() float64 {
	return d.devices[d.selected].DefaultSampleRate
}

// OpenStream opens and starts an input stream on the selected device at
// its default sample rate with the fixed frame geometry. An already open
// stream is closed first. On failure the driver is left with no active
// stream and the backend error is returned to the caller.
func (d *Driver) OpenStream() error {
	if d.stream != nil {
		d.CloseStream()
	}

	device := d.devices[d.selected]
	latency := d.InputLatency()

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: config.Channels,
			Latency:  latency,
		},
		SampleRate:      device.DefaultSampleRate,
		FramesPerBuffer: config.FramesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, d.captureCallback)
	if err != nil {
		return errors.Wrap(err, "could not open input stream")
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return errors.Wrap(err, "could not start input stream")
	}

	d.stream = stream
	applog.Infof("input stream open on [%d] %s at %.0f Hz (%s latency)", d.selected, device.Name, device.DefaultSampleRate, latency)
	return nil
}

// CloseStream stops and closes the active stream. It is a no-op when no
// stream is open. Backend stop/close failures are logged; the driver
// always ends up in the safe no-stream state.
func (d *Driver) CloseStream() {
	if d.stream == nil {
		return
	}
	if err := d.stream.Stop(); err != nil {
		applog.Warnf("could not stop input stream: %v", err)
	}
	if err := d.stream.Close(); err != nil {
		applog.Warnf("could not close input stream: %v", err)
	}
	d.stream = nil
}

// SetSelectedDevice validates the index, updates the selection and
// re-opens the stream against the new device.
func (d *Driver) SetSelectedDevice(index int) error {
	if index < 0 || index >= len(d.devices) {
		return errors.Wrapf(ErrDeviceIndexOutOfRange, "device %d", index)
	}
	d.selected = index
	applog.Infof("device changed to: %s", d.devices[index].Name)

	d.CloseStream()
	return d.OpenStream()
}

// captureCallback runs on the audio backend's thread for every hardware
// buffer. It performs exactly one queue write and nothing else: no
// allocation, no locking, no logging. A full queue drops the frame,
// because stalling the hardware thread is worse than losing one frame.
func (d *Driver) captureCallback(in []float32) {
	n := copy(d.scratch[:], in)
	for i := n; i < len(d.scratch); i++ {
		d.scratch[i] = 0
	}
	d.in.Write(d.scratch)
}

// InputLatency reports the latency hint the driver requests from the
// selected device.
func (d *Driver) InputLatency() time.Duration {
	device := d.devices[d.selected]
	if d.lowLatency {
		return device.DefaultLowInputLatency
	}
	return device.DefaultHighInputLatency
}
