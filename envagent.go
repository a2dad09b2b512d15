// Package envagent provides a small façade over the agent execution runtime:
// a shared capability registry, a snapshot store, a reasoning provider and a
// logger, assembled once by the composition root. Most applications:
//  1. Create a Runtime via New() (optionally overriding defaults)
//  2. Register capabilities on the shared registry
//  3. Construct agents with Runtime.NewAgent and drive them through Execute
//
// The façade deliberately stays thin; every component remains usable on its
// own with explicit construction.
package envagent

import (
	"github.com/notwitcheer/env-dev-ai-agent/agent"
	"github.com/notwitcheer/env-dev-ai-agent/capability"
	"github.com/notwitcheer/env-dev-ai-agent/core"
	"github.com/notwitcheer/env-dev-ai-agent/logging"
	"github.com/notwitcheer/env-dev-ai-agent/memory"
	"github.com/notwitcheer/env-dev-ai-agent/reasoning"
)

// Options configure a Runtime.
type Options struct {
	// Registry overrides the capability registry (default: empty registry).
	Registry *capability.Registry
	// Provider is the reasoning strategy shared by agents built through this
	// runtime (default: a rule provider with no rules, i.e. listing-only).
	Provider reasoning.Provider
	// Store is the snapshot store handed to agents with persistence enabled.
	Store memory.Store
	// Logger receives structured logs from every component (default: NoOp).
	Logger logging.Logger
}

// Runtime is the composition root holding the shared, read-mostly capability
// registry plus the defaults injected into each constructed agent. Register
// all capabilities before constructing and running agents; the registry is
// not synchronized.
type Runtime struct {
	registry *capability.Registry
	provider reasoning.Provider
	store    memory.Store
	logger   logging.Logger
}

// New creates a Runtime with optional overrides.
func New(optFns ...func(o *Options)) *Runtime {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	registry := opts.Registry
	if registry == nil {
		registry = capability.NewRegistry(func(o *capability.RegistryOptions) {
			o.Logger = logger
		})
	}
	provider := opts.Provider
	if provider == nil {
		provider = reasoning.NewRuleProvider(nil, func(o *reasoning.RuleProviderOptions) {
			o.Logger = logger
		})
	}

	return &Runtime{
		registry: registry,
		provider: provider,
		store:    opts.Store,
		logger:   logger,
	}
}

// Registry returns the shared capability registry.
func (r *Runtime) Registry() *capability.Registry { return r.registry }

// RegisterCapabilities registers the given capabilities, stopping at the
// first failure.
func (r *Runtime) RegisterCapabilities(caps ...capability.Capability) error {
	for _, c := range caps {
		if err := r.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// NewAgent constructs an agent bound to the runtime's registry, provider,
// store and logger.
func (r *Runtime) NewAgent(cfg core.SessionConfiguration) *agent.Agent {
	return agent.New(cfg, r.registry, r.provider, func(o *agent.Options) {
		o.Store = r.store
		o.Logger = r.logger
	})
}
