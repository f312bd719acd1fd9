package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/xericdusk/ghostbuster/internal/rssi"
	"github.com/xericdusk/ghostbuster/internal/sweep"
)

// Defaults applied to zero config values.
const (
	defaultSweepInterval  = 30.0 // seconds
	defaultSweepTimeout   = 30.0 // seconds
	defaultTickInterval   = 2.0  // seconds
	defaultThreshold      = -60.0
	defaultListenAddr     = ":8080"
	defaultDataDirectory  = "data"
	defaultSweepFreqStart = 400_000_000 // Hz
	defaultSweepFreqEnd   = 450_000_000 // Hz

	// Fallback position until the first geolocation fix arrives.
	defaultFallbackLatitude  = 36.8529
	defaultFallbackLongitude = -75.9780
)

// Config represents the main application configuration
type Config struct {
	Settings    Settings       `yaml:"settings"`
	Sweep       SweepConfig    `yaml:"sweep"`
	Measurement rssi.Config    `yaml:"measurement"`
	Track       TrackConfig    `yaml:"track"`
	Position    PositionConfig `yaml:"position"`
	Server      ServerConfig   `yaml:"server"`
	Storage     StorageConfig  `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// SlogLevel maps the configured level name onto slog levels, defaulting to info.
func (s Settings) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SweepConfig couples the sweep tool configuration with scheduling and
// candidate extraction settings.
type SweepConfig struct {
	Tool            sweep.Config `yaml:"tool"`
	IntervalSeconds float64      `yaml:"intervalSeconds"`
	TimeoutSeconds  float64      `yaml:"timeoutSeconds"`
	ThresholdDBm    float64      `yaml:"thresholdDBm"`
}

// TrackConfig represents chase loop settings
type TrackConfig struct {
	TickSeconds float64 `yaml:"tickSeconds"`
}

// PositionConfig represents the geolocation fallback
type PositionConfig struct {
	FallbackLatitude  float64 `yaml:"fallbackLatitude"`
	FallbackLongitude float64 `yaml:"fallbackLongitude"`
}

// ServerConfig represents the operator API settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// LoadConfig reads and validates the YAML configuration file, applying
// defaults to unset values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.applyDefaults()

	if err = config.Sweep.Tool.Validate(); err != nil {
		return nil, fmt.Errorf("validating sweep config: %w", err)
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Sweep.Tool.FrequencyStart == 0 && c.Sweep.Tool.FrequencyEnd == 0 {
		c.Sweep.Tool.FrequencyStart = defaultSweepFreqStart
		c.Sweep.Tool.FrequencyEnd = defaultSweepFreqEnd
	}
	if c.Sweep.IntervalSeconds <= 0 {
		c.Sweep.IntervalSeconds = defaultSweepInterval
	}
	if c.Sweep.TimeoutSeconds <= 0 {
		c.Sweep.TimeoutSeconds = defaultSweepTimeout
	}
	if c.Sweep.ThresholdDBm == 0 {
		c.Sweep.ThresholdDBm = defaultThreshold
	}
	if c.Track.TickSeconds <= 0 {
		c.Track.TickSeconds = defaultTickInterval
	}
	if c.Position.FallbackLatitude == 0 && c.Position.FallbackLongitude == 0 {
		c.Position.FallbackLatitude = defaultFallbackLatitude
		c.Position.FallbackLongitude = defaultFallbackLongitude
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultListenAddr
	}
	if c.Storage.DataDirectory == "" {
		c.Storage.DataDirectory = defaultDataDirectory
	}
}
