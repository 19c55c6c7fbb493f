package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
)

// Config is the top-level configuration: server settings plus the startup
// parameters for each algorithm. Durations are expressed in the units the
// API uses (milliseconds for the fixed window, seconds elsewhere).
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	FixedWindow   FixedWindowConfig   `yaml:"fixed_window"`
	SlidingWindow SlidingWindowConfig `yaml:"sliding_window"`
	TokenBucket   TokenBucketConfig   `yaml:"token_bucket"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`
}

type FixedWindowConfig struct {
	WindowMs    int `yaml:"window_ms"`
	MaxRequests int `yaml:"max_requests"`
}

type SlidingWindowConfig struct {
	MaxPoints int `yaml:"max_points"`
	WindowSec int `yaml:"window_sec"`
	BlockSec  int `yaml:"block_sec"`
}

type TokenBucketConfig struct {
	Capacity          int `yaml:"capacity"`
	WindowSec         int `yaml:"window_sec"`
	RefillAmount      int `yaml:"refill_amount"`
	RefillIntervalSec int `yaml:"refill_interval_sec"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:     ":8080",
			LogLevel: "info",
		},
		FixedWindow: FixedWindowConfig{
			WindowMs:    60000,
			MaxRequests: 10,
		},
		SlidingWindow: SlidingWindowConfig{
			MaxPoints: 10,
			WindowSec: 60,
			BlockSec:  0,
		},
		TokenBucket: TokenBucketConfig{
			Capacity:          10,
			WindowSec:         60,
			RefillAmount:      1,
			RefillIntervalSec: 6,
		},
	}
}

// LoadFile reads a YAML config file and merges it over the defaults: fields
// absent from the file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LimiterConfigs converts the file representation into engine configs, one
// per algorithm, ready to hand to the registry.
func (c Config) LimiterConfigs() []limiter.Config {
	return []limiter.Config{
		limiter.FixedWindowConfig{
			Window:      time.Duration(c.FixedWindow.WindowMs) * time.Millisecond,
			MaxRequests: c.FixedWindow.MaxRequests,
		},
		limiter.SlidingWindowConfig{
			MaxPoints: c.SlidingWindow.MaxPoints,
			Window:    time.Duration(c.SlidingWindow.WindowSec) * time.Second,
			BlockFor:  time.Duration(c.SlidingWindow.BlockSec) * time.Second,
		},
		limiter.TokenBucketConfig{
			Capacity:       c.TokenBucket.Capacity,
			Window:         time.Duration(c.TokenBucket.WindowSec) * time.Second,
			RefillAmount:   c.TokenBucket.RefillAmount,
			RefillInterval: time.Duration(c.TokenBucket.RefillIntervalSec) * time.Second,
		},
	}
}

// Validate checks every algorithm config for range errors.
func (c Config) Validate() error {
	for _, lc := range c.LimiterConfigs() {
		if err := lc.Validate(); err != nil {
			return fmt.Errorf("%s: %w", lc.Kind(), err)
		}
	}
	return nil
}
