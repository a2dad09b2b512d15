// Package config loads runtime configuration from YAML. It only produces
// values; the composition root wires them into concrete components, and the
// resulting SessionConfiguration stays immutable from then on.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/notwitcheer/env-dev-ai-agent/core"
)

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | text
}

// ModelConfig selects the generative backend. An empty provider means the
// deterministic rule provider is used instead.
type ModelConfig struct {
	Provider string `yaml:"provider"` // openai | anthropic | mock
	Name     string `yaml:"name"`
}

// SnapshotConfig selects the snapshot store backend.
type SnapshotConfig struct {
	Backend   string `yaml:"backend"` // file | redis
	Dir       string `yaml:"dir"`
	RedisAddr string `yaml:"redis_addr"`
}

// Config is the top-level runtime configuration.
type Config struct {
	Logging   LoggingConfig             `yaml:"logging"`
	Model     ModelConfig               `yaml:"model"`
	Snapshots SnapshotConfig            `yaml:"snapshots"`
	Agent     core.SessionConfiguration `yaml:"agent"`
}

// Default returns a baseline configuration: text logging at info, no
// generative backend, file snapshots under ./snapshots.
func Default() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Snapshots: SnapshotConfig{Backend: "file", Dir: "snapshots"},
		Agent:     core.DefaultSessionConfiguration("assistant"),
	}
}

// Load reads and validates a YAML config file, layering it over Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enum fields and required combinations.
func (c Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	switch c.Model.Provider {
	case "", "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("invalid model provider %q", c.Model.Provider)
	}
	switch c.Snapshots.Backend {
	case "", "file":
	case "redis":
		if c.Snapshots.RedisAddr == "" {
			return fmt.Errorf("snapshots.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid snapshot backend %q", c.Snapshots.Backend)
	}
	if c.Agent.Name == "" {
		return fmt.Errorf("agent.name must not be empty")
	}
	if c.Agent.MaxIterations < 0 || c.Agent.MaxSubagents < 0 {
		return fmt.Errorf("iteration and subagent limits must not be negative")
	}
	return nil
}
