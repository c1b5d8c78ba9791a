// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestFrameGeometry(t *testing.T) {
	if NyquistBins*2 != FramesPerBuffer {
		t.Fatalf("NyquistBins=%d does not match FramesPerBuffer=%d", NyquistBins, FramesPerBuffer)
	}
	if len(BandBoundaries) != NumBands {
		t.Fatalf("band table has %d entries, expected %d", len(BandBoundaries), NumBands)
	}
	for i := 1; i < NumBands; i++ {
		if BandBoundaries[i] <= BandBoundaries[i-1] {
			t.Errorf("band boundaries not ascending at %d: %g <= %g",
				i, BandBoundaries[i], BandBoundaries[i-1])
		}
	}
}

func TestNewConfigValid(t *testing.T) {
	t.Parallel()
	if err := NewConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	mutations := map[string]func(*Config){
		"device":     func(c *Config) { c.DeviceID = -2 },
		"skip zero":  func(c *Config) { c.SkipFactor = 0 },
		"skip large": func(c *Config) { c.SkipFactor = MaxSkipFactor + 1 },
		"queue":      func(c *Config) { c.QueueCapacity = 0 },
		"tick rate":  func(c *Config) { c.TickRate = 0 },
		"gain":       func(c *Config) { c.Gain = 0 },
		"surface":    func(c *Config) { c.SurfaceWidth = 0 },
		"log level":  func(c *Config) { c.LogLevel = "chatty" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := NewConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoadFileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadUnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, "skip_factor: 4\ntick_rate: 30\ngain: 8.5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SkipFactor != 4 || cfg.TickRate != 30 || cfg.Gain != 8.5 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.QueueCapacity != DefaultQueueCapacity {
		t.Errorf("unset field lost its default: %d", cfg.QueueCapacity)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, "skip_factor: 0\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Error("expected validation error, got nil or wrong error")
	}
}
