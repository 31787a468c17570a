package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the engine configuration.
type Config struct {
	Seed          int64  `yaml:"seed" json:"seed"`
	GeneratorType string `yaml:"generator" json:"generator"` // "default" or "flat"
	// SpawnRadius is the radius, in chunks, generated around spawn at startup.
	SpawnRadius int `yaml:"spawn_radius" json:"spawn_radius"`
	TickRate    int `yaml:"tick_rate" json:"tick_rate"`
	// RandomTickSpeed is the number of random ticks per chunk section per
	// tick. 0 selects the default, negative disables random ticks.
	RandomTickSpeed   int     `yaml:"random_tick_speed" json:"random_tick_speed"`
	Workers           int     `yaml:"workers" json:"workers"` // 0 = GOMAXPROCS
	MaxTicketsPerTick int     `yaml:"max_tickets_per_tick" json:"max_tickets_per_tick"`
	CaveThreshold     float64 `yaml:"cave_threshold" json:"cave_threshold"`
	// BlockData is an optional minecraft-data blocks.json merged onto the
	// built-in block table.
	BlockData string `yaml:"block_data" json:"block_data"`
	DataDir   string `yaml:"data_dir" json:"data_dir"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GeneratorType:     "default",
		SpawnRadius:       4,
		TickRate:          20,
		RandomTickSpeed:   3,
		MaxTicketsPerTick: 65536,
		CaveThreshold:     0.45,
		DataDir:           "data",
		LogLevel:          "info",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["generator"] {
		cfg.GeneratorType = fromFile.GeneratorType
	}
	if !explicitFlags["spawn-radius"] {
		cfg.SpawnRadius = fromFile.SpawnRadius
	}
	if !explicitFlags["tick-rate"] {
		cfg.TickRate = fromFile.TickRate
	}
	if !explicitFlags["random-tick-speed"] {
		cfg.RandomTickSpeed = fromFile.RandomTickSpeed
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["max-tickets"] {
		cfg.MaxTicketsPerTick = fromFile.MaxTicketsPerTick
	}
	if !explicitFlags["cave-threshold"] {
		cfg.CaveThreshold = fromFile.CaveThreshold
	}
	if !explicitFlags["block-data"] {
		cfg.BlockData = fromFile.BlockData
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	switch c.GeneratorType {
	case "default", "flat":
	default:
		errs = append(errs, fmt.Errorf("generator %q: want default or flat", c.GeneratorType))
	}
	if c.SpawnRadius < 0 {
		errs = append(errs, fmt.Errorf("spawn_radius %d: must not be negative", c.SpawnRadius))
	}
	if c.TickRate <= 0 || c.TickRate > 1000 {
		errs = append(errs, fmt.Errorf("tick_rate %d: want 1..1000", c.TickRate))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d: must not be negative", c.Workers))
	}
	if c.MaxTicketsPerTick <= 0 {
		errs = append(errs, fmt.Errorf("max_tickets_per_tick %d: must be positive", c.MaxTicketsPerTick))
	}
	if c.CaveThreshold < 0 || c.CaveThreshold >= 1 {
		errs = append(errs, fmt.Errorf("cave_threshold %g: want [0, 1)", c.CaveThreshold))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level %q: want debug, info, warn or error", s)
}
