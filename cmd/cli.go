// SPDX-License-Identifier: MIT
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"audiolize/internal/build"
	"audiolize/internal/config"
)

// ParseArgs parses the command line into a runtime configuration.
// Precedence, lowest to highest: built-in defaults, config file, flags.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.Get()
	options := config.NewConfig()

	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time audio spectrum visualizer",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			fromFile, err := config.Load(configPath)
			if err != nil {
				return err
			}
			mergeFileConfig(cmd, options, fromFile)
			return options.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&options.DeviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device index. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().BoolVarP(&options.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Request the device's low-latency hint when opening the stream")

	// Analysis Configuration
	rootCmd.PersistentFlags().IntVarP(&options.SkipFactor, "skip-factor", "k", config.DefaultSkipFactor,
		"Analyze every Nth captured frame (1 analyzes everything)")
	rootCmd.PersistentFlags().IntVarP(&options.QueueCapacity, "queue-capacity", "q", config.DefaultQueueCapacity,
		"Capacity of the frame queues, rounded up to a power of two")

	// Render Configuration
	rootCmd.PersistentFlags().IntVarP(&options.TickRate, "tick-rate", "t", config.DefaultTickRate,
		"Render ticks per second")
	rootCmd.PersistentFlags().Float64VarP(&options.Gain, "gain", "g", config.DefaultGain,
		"Visual gain applied to band amplitudes before drawing")

	// Debug Configuration
	rootCmd.PersistentFlags().StringVar(&options.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to a YAML config file (default config.yaml when present)")

	// Execute the CLI
	rootCmd.SetArgs(os.Args[1:])
	err := rootCmd.Execute()
	if err != nil {
		return nil, err
	}

	return options, nil
}

// mergeFileConfig overlays file values onto options for every flag the
// user did not set explicitly. Flags bind directly into options, so a
// changed flag already holds the user's value.
func mergeFileConfig(cmd *cobra.Command, options, fromFile *config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("device") {
		options.DeviceID = fromFile.DeviceID
	}
	if !flags.Changed("low-latency") {
		options.LowLatency = fromFile.LowLatency
	}
	if !flags.Changed("skip-factor") {
		options.SkipFactor = fromFile.SkipFactor
	}
	if !flags.Changed("queue-capacity") {
		options.QueueCapacity = fromFile.QueueCapacity
	}
	if !flags.Changed("tick-rate") {
		options.TickRate = fromFile.TickRate
	}
	if !flags.Changed("gain") {
		options.Gain = fromFile.Gain
	}
	if !flags.Changed("log-level") {
		options.LogLevel = fromFile.LogLevel
	}
	options.SurfaceWidth = fromFile.SurfaceWidth
	options.SurfaceHeight = fromFile.SurfaceHeight
}
