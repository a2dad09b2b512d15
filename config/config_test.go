package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notwitcheer/env-dev-ai-agent/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "file", cfg.Snapshots.Backend)
	assert.Equal(t, "assistant", cfg.Agent.Name)
	assert.Equal(t, 10, cfg.Agent.MaxIterations)
	require.NoError(t, cfg.Validate())
}

func TestLoad_LayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
model:
  provider: anthropic
  name: claude-3-5-sonnet-20241022
agent:
  name: market-analyst
  system_prompt: You are a market analyst.
  max_iterations: 5
  can_spawn_subagents: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset fields keep their defaults.
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "file", cfg.Snapshots.Backend)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.Equal(t, "market-analyst", cfg.Agent.Name)
	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.True(t, cfg.Agent.CanSpawnSubagents)
	assert.Equal(t, core.ModeAutonomous, cfg.Agent.Mode)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: verbose
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging level")
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"bad format":          func(c *Config) { c.Logging.Format = "xml" },
		"bad provider":        func(c *Config) { c.Model.Provider = "palm" },
		"bad backend":         func(c *Config) { c.Snapshots.Backend = "s3" },
		"redis without addr":  func(c *Config) { c.Snapshots.Backend = "redis"; c.Snapshots.RedisAddr = "" },
		"empty agent name":    func(c *Config) { c.Agent.Name = "" },
		"negative iterations": func(c *Config) { c.Agent.MaxIterations = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	redis := Default()
	redis.Snapshots.Backend = "redis"
	redis.Snapshots.RedisAddr = "localhost:6379"
	assert.NoError(t, redis.Validate())
}
