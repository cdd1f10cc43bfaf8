package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the host tool configuration.
// The firmware has no configuration; alert thresholds are compiled in.
type Config struct {
	Serial     SerialConfig     `yaml:"serial"`
	History    HistoryConfig    `yaml:"history"`
	Simulation SimulationConfig `yaml:"simulation"`
	Display    DisplayConfig    `yaml:"display"`
}

// SerialConfig contains serial port configuration for the telemetry link.
type SerialConfig struct {
	Port       string `yaml:"port"`
	BaudRate   int    `yaml:"baud_rate"`
	Retries    int    `yaml:"retries"`     // Connection attempts before giving up
	BufferSize int    `yaml:"buffer_size"` // Received frames held before new ones are dropped
}

// HistoryConfig contains alert history parameters.
type HistoryConfig struct {
	Window             time.Duration `yaml:"window"`               // Time window kept in memory
	MinEpisodeDuration time.Duration `yaml:"min_episode_duration"` // Shorter alert episodes are ignored
}

// SimulationConfig contains simulated board configuration.
type SimulationConfig struct {
	Water       float64       `yaml:"water"`        // Initial water level (%)
	Rain        float64       `yaml:"rain"`         // Initial rainfall volume (%)
	NoiseLevel  float64       `yaml:"noise_level"`  // Noise amplitude (%)
	SweepPeriod time.Duration `yaml:"sweep_period"` // Period of the automatic sweep (0 = manual only)
	SweepDepth  float64       `yaml:"sweep_depth"`  // Sweep amplitude (%)
}

// DisplayConfig contains UI parameters.
type DisplayConfig struct {
	MaxPoints       int           `yaml:"max_points"`       // Maximum points plotted per trace
	RefreshInterval time.Duration `yaml:"refresh_interval"` // Minimum time between UI refreshes
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:       "/dev/ttyACM0",
			BaudRate:   115200,
			Retries:    5,
			BufferSize: 100,
		},
		History: HistoryConfig{
			Window:             60 * time.Second,
			MinEpisodeDuration: 200 * time.Millisecond,
		},
		Simulation: SimulationConfig{
			Water:       40,
			Rain:        30,
			NoiseLevel:  1,
			SweepPeriod: 0,
			SweepDepth:  45,
		},
		Display: DisplayConfig{
			MaxPoints:       600,
			RefreshInterval: 50 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.Retries == 0 {
		c.Serial.Retries = def.Serial.Retries
	}
	if c.Serial.BufferSize <= 0 {
		c.Serial.BufferSize = def.Serial.BufferSize
	}

	if c.History.Window == 0 {
		c.History.Window = def.History.Window
	}

	if c.Simulation.SweepDepth == 0 {
		c.Simulation.SweepDepth = def.Simulation.SweepDepth
	}

	if c.Display.MaxPoints == 0 {
		c.Display.MaxPoints = def.Display.MaxPoints
	}
	if c.Display.RefreshInterval == 0 {
		c.Display.RefreshInterval = def.Display.RefreshInterval
	}
}
