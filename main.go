// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"audiolize/cmd"
	"audiolize/internal/app"
	"audiolize/internal/audio"
	applog "audiolize/internal/log"
)

// main runs in three phases:
//
// 1. Startup (cold path): initialize PortAudio, parse arguments, handle
// one-off commands such as device listing.
//
// 2. Concurrent (hot path): open the input stream, start the analyzer
// and run the main loop until a termination signal arrives. The first
// callback from the opened stream marks the start of the hot path.
//
// 3. Shutdown (cold path): the cancelled context makes the main loop
// stop the analyzer and close the stream before returning.
func main() {
	// ==================== STARTUP PHASE ====================

	if err := audio.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}
	defer audio.Terminate()

	config, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if level, ok := applog.ParseLevel(config.LogLevel); ok {
		applog.SetLevel(level)
	}

	// One-off commands run without the pipeline.
	if config.Command == "list" {
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}

	// ==================== CONCURRENT PHASE ====================

	pipeline, err := app.New(config)
	if err != nil {
		applog.Fatalf("%v", err)
	}

	if err := pipeline.Start(); err != nil {
		applog.Fatalf("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		cancel()
	}()

	applog.Infof("pipeline running, ctrl-c to stop")

	// ==================== SHUTDOWN PHASE ====================

	// Run blocks until ctx is cancelled and tears the pipeline down in
	// dependency order on its way out.
	pipeline.Run(ctx)
}
