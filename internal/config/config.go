// SPDX-License-Identifier: MIT
package config

import (
	"fmt"

	"audiolize/internal/log"
)

// Compile-time pipeline constants. The frame geometry is fixed because the
// queues carry fixed-size records and the FFT plan is built once for
// exactly this size.
const (
	// FramesPerBuffer is the number of sample positions per hardware buffer.
	// Must stay a power of two and equal to 2*NyquistBins.
	FramesPerBuffer = 256

	// Channels is the number of interleaved input channels.
	Channels = 2

	// FrameSamples is the number of float32 samples in one audio frame.
	FrameSamples = FramesPerBuffer * Channels

	// NyquistBins is the number of usable complex bins of the real FFT.
	NyquistBins = FramesPerBuffer / 2

	// NumBands is the number of output amplitude bands, one per configured
	// boundary frequency.
	NumBands = 7
)

// Defaults for the runtime configuration.
const (
	DefaultDeviceID      = -1 // -1 selects the system default input device
	DefaultQueueCapacity = 4
	DefaultSkipFactor    = 1
	DefaultTickRate      = 60
	DefaultGain          = 12.0
	DefaultSurfaceWidth  = 800
	DefaultSurfaceHeight = 400
	DefaultLowLatency    = true
	DefaultLogLevel      = "info"

	MaxSkipFactor = 64
	MaxTickRate   = 240
)

// BandBoundaries lists the upper boundary frequency of each band in Hz,
// ascending. Read-only at runtime.
var BandBoundaries = [NumBands]float64{60, 150, 400, 1000, 2400, 6000, 14000}

// Config holds all runtime options for the pipeline. It is built from
// defaults, optionally a YAML file, then command line flags.
type Config struct {
	// Audio device settings.
	DeviceID   int  `yaml:"device"`      // Input device index, -1 for system default
	LowLatency bool `yaml:"low_latency"` // Request the device's low-latency hint

	// Analysis settings.
	SkipFactor    int `yaml:"skip_factor"`    // Analyze every Nth captured frame
	QueueCapacity int `yaml:"queue_capacity"` // Capacity of the two frame queues

	// Render settings.
	TickRate      int     `yaml:"tick_rate"`      // Render ticks per second
	Gain          float64 `yaml:"gain"`           // Visual gain applied to band amplitudes
	SurfaceWidth  int     `yaml:"surface_width"`  // Initial drawing surface width
	SurfaceHeight int     `yaml:"surface_height"` // Initial drawing surface height

	// Diagnostics.
	LogLevel string `yaml:"log_level"`
	Command  string `yaml:"-"` // One-off command ("list"), never from file
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		DeviceID:      DefaultDeviceID,
		LowLatency:    DefaultLowLatency,
		SkipFactor:    DefaultSkipFactor,
		QueueCapacity: DefaultQueueCapacity,
		TickRate:      DefaultTickRate,
		Gain:          DefaultGain,
		SurfaceWidth:  DefaultSurfaceWidth,
		SurfaceHeight: DefaultSurfaceHeight,
		LogLevel:      DefaultLogLevel,
	}
}

// Validate checks the configuration ranges. It is called after all
// sources (defaults, file, flags) have been applied.
func (c *Config) Validate() error {
	if c.DeviceID < -1 {
		return fmt.Errorf("invalid device index: %d", c.DeviceID)
	}
	if c.SkipFactor < 1 || c.SkipFactor > MaxSkipFactor {
		return fmt.Errorf("skip factor must be in [1,%d], got %d", MaxSkipFactor, c.SkipFactor)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue capacity must be positive, got %d", c.QueueCapacity)
	}
	if c.TickRate < 1 || c.TickRate > MaxTickRate {
		return fmt.Errorf("tick rate must be in [1,%d], got %d", MaxTickRate, c.TickRate)
	}
	if c.Gain <= 0 {
		return fmt.Errorf("gain must be positive, got %g", c.Gain)
	}
	if c.SurfaceWidth < 1 || c.SurfaceHeight < 1 {
		return fmt.Errorf("surface size must be positive, got %dx%d", c.SurfaceWidth, c.SurfaceHeight)
	}
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	return nil
}
