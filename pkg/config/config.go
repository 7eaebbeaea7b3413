// Package config loads and validates the chatdrive configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/driftlabs/chatdrive/pkg/webchat"
)

// Config is the full configuration surface consumed by the engine and CLI.
type Config struct {
	// Site is the default selector-profile name.
	Site string `yaml:"site" json:"site"`

	// ResponseTimeoutSeconds bounds one turn. Values below the floor are
	// raised to it, not rejected; slow sites make short timeouts a footgun
	// rather than a preference.
	ResponseTimeoutSeconds int `yaml:"response_timeout" json:"response_timeout"`

	// Headless controls locally launched browsers.
	Headless bool `yaml:"headless" json:"headless"`

	// RemoteDebug configures attaching to an already-running browser.
	RemoteDebug RemoteDebugConfig `yaml:"remote_debug" json:"remote_debug"`

	// Poll overrides the completion-detector timing.
	Poll PollConfig `yaml:"poll" json:"poll"`
}

// RemoteDebugConfig configures the attach-over-debug-port connection mode.
type RemoteDebugConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Port    int  `yaml:"port" json:"port"`
}

// PollConfig overrides the completion-detector heuristics. Both values are
// empirically tuned, which is why they are configurable at all.
type PollConfig struct {
	IntervalMs   int `yaml:"interval_ms" json:"interval_ms"`
	StableChecks int `yaml:"stable_checks" json:"stable_checks"`
}

// MinResponseTimeoutSeconds is the enforced floor for response_timeout.
const MinResponseTimeoutSeconds = 30

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Site:                   "googleai",
		ResponseTimeoutSeconds: 90,
		Headless:               true,
		RemoteDebug: RemoteDebugConfig{
			Enabled: false,
			Port:    9222,
		},
		Poll: PollConfig{
			IntervalMs:   int(webchat.DefaultPollInterval / time.Millisecond),
			StableChecks: webchat.DefaultStableChecks,
		},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes soft limits.
func (c *Config) Validate() error {
	if c.Site == "" {
		return fmt.Errorf("site is required")
	}
	if _, ok := webchat.Lookup(c.Site); !ok {
		return fmt.Errorf("unknown site %q (known sites: %v)", c.Site, webchat.Names())
	}

	if c.ResponseTimeoutSeconds < MinResponseTimeoutSeconds {
		c.ResponseTimeoutSeconds = MinResponseTimeoutSeconds
	}

	if c.RemoteDebug.Enabled && (c.RemoteDebug.Port < 1 || c.RemoteDebug.Port > 65535) {
		return fmt.Errorf("invalid remote debug port: %d", c.RemoteDebug.Port)
	}

	if c.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll interval_ms cannot be negative")
	}
	if c.Poll.StableChecks < 0 {
		return fmt.Errorf("poll stable_checks cannot be negative")
	}

	return nil
}

// EngineOptions converts the configuration into engine options.
func (c *Config) EngineOptions() webchat.Options {
	return webchat.Options{
		ResponseTimeout: time.Duration(c.ResponseTimeoutSeconds) * time.Second,
		Headless:        c.Headless,
		RemoteDebug:     c.RemoteDebug.Enabled,
		DebugPort:       c.RemoteDebug.Port,
		PollInterval:    time.Duration(c.Poll.IntervalMs) * time.Millisecond,
		StableChecks:    c.Poll.StableChecks,
	}
}
