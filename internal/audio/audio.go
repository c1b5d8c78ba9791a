// SPDX-License-Identifier: MIT
/*
Package audio owns the PortAudio input side of the pipeline: subsystem
lifecycle, device enumeration, and the capture driver whose stream
callback feeds the input frame queue.

Thread safety: everything here runs on the main context except the stream
callback, which runs on the audio backend's thread and touches nothing
but a pre-allocated frame and the queue.
*/
package audio

import (
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/errors"

	"audiolize/internal/config"
)

// Frame is one fixed-duration slice of interleaved input audio, exactly
// as delivered by a single hardware callback.
type Frame [config.FrameSamples]float32

// Initialize sets up the PortAudio subsystem. It must be called before
// any other function in this package and paired with Terminate.
func Initialize() error {
	return errors.Wrap(portaudio.Initialize(), "failed to initialize PortAudio")
}

// Terminate shuts down the PortAudio subsystem.
func Terminate() error {
	return errors.Wrap(portaudio.Terminate(), "failed to terminate PortAudio")
}
