package core

// Mode selects how an agent drives its turns.
type Mode string

const (
	// ModeAutonomous runs turns to completion without pausing for input.
	ModeAutonomous Mode = "autonomous"
	// ModeInteractive allows the agent to park in WaitingForInput between turns.
	ModeInteractive Mode = "interactive"
)

// PersistenceOptions configure optional snapshot persistence for a session's
// memory. When disabled, Persist and Load are no-ops at the memory layer.
type PersistenceOptions struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Dir     string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// SessionConfiguration is the immutable, caller-supplied configuration of one
// agent session. It is created once by the composition root and never mutated
// afterwards; agents copy what they need at construction.
type SessionConfiguration struct {
	// Name identifies the agent in prompts, logs and snapshots.
	Name string `json:"name" yaml:"name"`
	// SystemPrompt is the base instruction handed to the reasoning provider.
	SystemPrompt string `json:"systemPrompt" yaml:"system_prompt"`
	// AllowedCapabilities scopes the registry subset visible to this session.
	// Empty means every registered capability is available.
	AllowedCapabilities []string `json:"allowedCapabilities,omitempty" yaml:"allowed_capabilities,omitempty"`
	// Mode selects autonomous or interactive turn handling.
	Mode Mode `json:"mode" yaml:"mode"`
	// MaxIterations caps Execute turns for the lifetime of the session.
	MaxIterations int `json:"maxIterations" yaml:"max_iterations"`
	// MaxSubagents caps how many child sessions this session may spawn.
	MaxSubagents int `json:"maxSubagents" yaml:"max_subagents"`
	// CanSpawnSubagents gates delegation entirely.
	CanSpawnSubagents bool `json:"canSpawnSubagents" yaml:"can_spawn_subagents"`
	// Persistence configures optional snapshot persistence.
	Persistence PersistenceOptions `json:"persistence" yaml:"persistence"`
}

// DefaultSessionConfiguration returns a baseline autonomous configuration.
func DefaultSessionConfiguration(name string) SessionConfiguration {
	return SessionConfiguration{
		Name:          name,
		SystemPrompt:  "You are " + name + ", a helpful assistant.",
		Mode:          ModeAutonomous,
		MaxIterations: 10,
		MaxSubagents:  3,
	}
}
