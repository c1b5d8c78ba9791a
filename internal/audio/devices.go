// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// ErrNoDevicesFound indicates that the host reported no audio input devices.
var ErrNoDevicesFound = fmt.Errorf("no audio devices found")

// Device describes one host audio device as reported by PortAudio.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	DefaultLowLatency time.Duration
}

// paDevicesFunc is swapped out in tests to exercise error paths without
// touching real hardware.
var paDevicesFunc = portaudio.Devices

// HostDevices returns the ordered list of host audio devices.
// It fails with ErrNoDevicesFound when the host reports none.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if len(infos) == 0 {
		return nil, ErrNoDevicesFound
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			DefaultLowLatency: info.DefaultLowInputLatency,
		}
	}
	return devices, nil
}

// ListDevices prints all host audio devices to stdout. Used by the "list"
// command.
func ListDevices() error {
	devices, err := HostDevices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")
	for _, d := range devices {
		fmt.Printf("[%d] %s\n", d.ID, d.Name)
		fmt.Printf("    Input channels: %d\n", d.MaxInputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", d.DefaultSampleRate)
		fmt.Printf("    Low input latency: %.2fms\n", d.DefaultLowLatency.Seconds()*1000)
		fmt.Println()
	}
	return nil
}
