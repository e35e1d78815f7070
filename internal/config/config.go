// Package config loads kmsctl's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the effective configuration after defaults are applied.
type Config struct {
	// Device is the DRM card node to operate on.
	Device string

	Log     LogConfig
	Cursor  CursorConfig
	Pattern PatternConfig
}

// LogConfig controls slog output.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// CursorConfig sets the default hardware cursor geometry.
type CursorConfig struct {
	Width  uint32
	Height uint32
}

// PatternConfig controls the test pattern command.
type PatternConfig struct {
	Seconds int
	BPP     uint32
}

// rawConfig mirrors the YAML document. Pointer fields distinguish "absent"
// from zero so defaults only fill what the file left out.
type rawConfig struct {
	Device *string `yaml:"device"`

	Log struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"log"`

	Cursor struct {
		Width  *uint32 `yaml:"width"`
		Height *uint32 `yaml:"height"`
	} `yaml:"cursor"`

	Pattern struct {
		Seconds *int    `yaml:"seconds"`
		BPP     *uint32 `yaml:"bpp"`
	} `yaml:"pattern"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Device:  "/dev/dri/card0",
		Log:     LogConfig{Level: "info", Format: "text"},
		Cursor:  CursorConfig{Width: 64, Height: 64},
		Pattern: PatternConfig{Seconds: 5, BPP: 32},
	}
}

// DefaultConfigPath returns the standard config location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "kmsctl", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// is not an error; the defaults apply.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads and validates a configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML document, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if raw.Device != nil {
		cfg.Device = *raw.Device
	}
	if raw.Log.Level != nil {
		cfg.Log.Level = *raw.Log.Level
	}
	if raw.Log.Format != nil {
		cfg.Log.Format = *raw.Log.Format
	}
	if raw.Cursor.Width != nil {
		cfg.Cursor.Width = *raw.Cursor.Width
	}
	if raw.Cursor.Height != nil {
		cfg.Cursor.Height = *raw.Cursor.Height
	}
	if raw.Pattern.Seconds != nil {
		cfg.Pattern.Seconds = *raw.Pattern.Seconds
	}
	if raw.Pattern.BPP != nil {
		cfg.Pattern.BPP = *raw.Pattern.BPP
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the tool cannot act on.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device: must not be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: %q is not one of text, json", c.Log.Format)
	}
	if c.Cursor.Width == 0 || c.Cursor.Height == 0 {
		return fmt.Errorf("cursor: width and height must be nonzero")
	}
	if c.Cursor.Width > 512 || c.Cursor.Height > 512 {
		return fmt.Errorf("cursor: %dx%d exceeds the 512x512 hardware limit", c.Cursor.Width, c.Cursor.Height)
	}
	if c.Pattern.Seconds <= 0 {
		return fmt.Errorf("pattern.seconds: must be positive")
	}
	switch c.Pattern.BPP {
	case 16, 24, 32:
	default:
		return fmt.Errorf("pattern.bpp: %d is not one of 16, 24, 32", c.Pattern.BPP)
	}
	return nil
}
