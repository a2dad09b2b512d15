// Package agent implements the per-session execution core: a state machine
// that turns one textual instruction into zero or more validated capability
// invocations and a synthesized response, plus bounded delegation to child
// sessions.
//
// Concurrency contract: Execute calls on one Agent must be serialized by the
// caller; there is no internal lock. Distinct agents are fully independent
// apart from the shared, read-mostly capability registry.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
	"github.com/notwitcheer/env-dev-ai-agent/core"
	"github.com/notwitcheer/env-dev-ai-agent/logging"
	"github.com/notwitcheer/env-dev-ai-agent/memory"
	"github.com/notwitcheer/env-dev-ai-agent/reasoning"
)

// Options configure an Agent beyond its immutable session configuration.
type Options struct {
	// SessionID overrides the generated session id (used by Spawn to keep
	// children in the parent's id namespace).
	SessionID string
	// ParentID records the informational parent session id for subagents.
	ParentID string
	// Store overrides the snapshot store derived from the persistence options.
	Store memory.Store
	// Logger receives structured runtime logs; defaults to NoOp.
	Logger logging.Logger
}

// Agent drives one session: it owns the session's memory, tracks lifecycle
// state and mediates between free-form reasoning output and strictly
// validated capability dispatch. Execute never lets a malformed decision, a
// failing capability or a transport fault escape as a raised fault.
type Agent struct {
	id       string
	cfg      core.SessionConfiguration
	registry *capability.Registry
	provider reasoning.Provider
	memory   *memory.SessionMemory
	logger   logging.Logger

	status         core.Status
	iterationCount int
	parentID       string
	subagents      map[string]*core.SessionState
	startTime      time.Time
	endTime        *time.Time
}

// New constructs an idle Agent bound to a shared registry and a reasoning
// provider. The configuration is copied and never mutated.
func New(
	cfg core.SessionConfiguration,
	registry *capability.Registry,
	provider reasoning.Provider,
	optFns ...func(o *Options),
) *Agent {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	id := opts.SessionID
	if id == "" {
		id = core.NewID()
	}
	logger := logging.OrNoOp(opts.Logger)

	store := opts.Store
	if store == nil && cfg.Persistence.Enabled {
		store = memory.NewFileStore(cfg.Persistence.Dir)
	}

	return &Agent{
		id:       id,
		cfg:      cfg,
		registry: registry,
		provider: provider,
		memory: memory.New(id, func(o *memory.Options) {
			o.Store = store
			o.Logger = logger
		}),
		logger:    logger,
		status:    core.StatusIdle,
		parentID:  opts.ParentID,
		subagents: make(map[string]*core.SessionState),
		startTime: time.Now().UTC(),
	}
}

// ID returns the session id.
func (a *Agent) ID() string { return a.id }

// Status returns the current lifecycle status.
func (a *Agent) Status() core.Status { return a.status }

// Configuration returns a copy of the immutable session configuration.
func (a *Agent) Configuration() core.SessionConfiguration { return a.cfg }

// Memory exposes the session's memory for inspection and explicit
// persist/load calls. The memory instance is owned by this agent alone.
func (a *Agent) Memory() *memory.SessionMemory { return a.memory }

// State builds a deep snapshot of the session's observable state, including
// immutable snapshots of any spawned subagents.
func (a *Agent) State() *core.SessionState {
	state := &core.SessionState{
		ID:             a.id,
		Config:         a.cfg,
		Status:         a.status,
		ParentID:       a.parentID,
		IterationCount: a.iterationCount,
		Messages:       a.memory.Messages(),
		WorkingMemory:  a.memory.WorkingMemory(),
		StartTime:      a.startTime,
		EndTime:        a.endTime,
	}
	if len(a.subagents) > 0 {
		state.Subagents = make(map[string]*core.SessionState, len(a.subagents))
		for id, child := range a.subagents {
			state.Subagents[id] = child.Clone()
		}
	}
	return state.Clone()
}

// Execute runs one turn of the state machine:
//
//	Idle -> Thinking -> ExecutingCapability* -> Completed | Error
//
// It appends the user message, asks the reasoning provider for a Decision,
// dispatches requested capability calls sequentially in declared order,
// optionally runs a synthesis pass, and finalizes with an assistant message.
// Execute never raises: any fault not already contained by the registry or
// provider is caught once here and returned as a status=Error response.
func (a *Agent) Execute(ctx context.Context, input string) (resp *core.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("agent.execute.panic", "session", a.id, "recover", rec)
			resp = a.failTurn(fmt.Sprintf("Error: %v", rec))
		}
	}()

	if a.cfg.MaxIterations > 0 && a.iterationCount >= a.cfg.MaxIterations {
		a.logger.Warn("agent.execute.iteration_limit", "session", a.id, "iterations", a.iterationCount)
		message := fmt.Sprintf("Iteration limit of %d reached for this session.", a.cfg.MaxIterations)
		a.memory.AddMessage(core.NewMessage(core.RoleAssistant, message))
		a.finishTurn(core.ActionComplete)
		return &core.Response{
			Message:    message,
			NextAction: core.ActionComplete,
			Metadata:   map[string]any{"iteration_limit_reached": true},
		}
	}

	history := a.memory.Messages()
	a.memory.AddMessage(core.NewMessage(core.RoleUser, input))
	a.iterationCount++
	a.status = core.StatusThinking
	a.logger.Debug("agent.execute.start", "session", a.id, "iteration", a.iterationCount)

	manifest := a.registry.Describe(a.cfg.AllowedCapabilities)
	req := reasoning.Request{
		SystemPrompt: a.cfg.SystemPrompt,
		History:      history,
		Capabilities: manifest,
		Input:        input,
	}

	decision, err := a.provider.Think(ctx, req)
	if err != nil || decision == nil {
		if err == nil {
			err = fmt.Errorf("reasoning provider returned no decision")
		}
		a.logger.Error("agent.execute.think_error", "session", a.id, "error", err.Error())
		return a.failTurn(fmt.Sprintf("Error: %v", err))
	}

	if len(decision.CapabilityCalls) > 0 {
		a.status = core.StatusExecutingCapability
		a.dispatchCalls(ctx, decision.CapabilityCalls)
	}

	message := a.synthesize(ctx, req, decision)

	a.memory.AddMessage(core.NewMessage(core.RoleAssistant, message))
	a.finishTurn(decision.NextAction)
	a.persistIfConfigured(ctx)

	return &core.Response{
		Message:         message,
		CapabilityCalls: decision.CapabilityCalls,
		NextAction:      decision.NextAction,
		Metadata:        decision.Metadata,
	}
}

// dispatchCalls invokes requested capabilities sequentially in declared order;
// later calls may depend on working memory written by earlier ones, so there
// is no parallel fan-out at this layer. A failing result does not abort the
// remaining calls. Each result lands in working memory and in the history as
// a tool message.
func (a *Agent) dispatchCalls(ctx context.Context, calls []core.CapabilityCall) {
	allowed := a.allowedSet()
	for _, call := range calls {
		var result *capability.Result
		if allowed != nil && !allowed[call.Name] {
			a.logger.Warn("agent.capability.not_permitted", "session", a.id, "capability", call.Name)
			result = capability.NotPermitted(call.Name)
		} else {
			result = a.registry.Invoke(ctx, call.Name, call.Parameters)
		}

		a.memory.Set(call.Name+"_result", result)

		serialized, err := json.Marshal(result)
		if err != nil {
			serialized = []byte(fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()))
		}
		msg := core.NewMessage(core.RoleTool, string(serialized))
		msg.Metadata = map[string]any{"capability": call.Name, "success": result.Success}
		a.memory.AddMessage(msg)
	}
}

// synthesize runs the optional second reasoning pass over the history that now
// contains the tool messages. Only providers implementing Summarizer take
// part; any failure falls back silently to the original decision message.
func (a *Agent) synthesize(ctx context.Context, req reasoning.Request, decision *core.Decision) string {
	if len(decision.CapabilityCalls) == 0 {
		return decision.Message
	}
	summarizer, ok := a.provider.(reasoning.Summarizer)
	if !ok {
		return decision.Message
	}

	req.History = a.memory.Messages()
	summary, err := summarizer.Summarize(ctx, req)
	if err != nil || summary == "" {
		if err != nil {
			a.logger.Warn("agent.synthesis.failed", "session", a.id, "error", err.Error())
		}
		return decision.Message
	}
	return summary
}

func (a *Agent) allowedSet() map[string]bool {
	if len(a.cfg.AllowedCapabilities) == 0 {
		return nil
	}
	set := make(map[string]bool, len(a.cfg.AllowedCapabilities))
	for _, name := range a.cfg.AllowedCapabilities {
		set[name] = true
	}
	return set
}

func (a *Agent) finishTurn(next core.NextAction) {
	if a.cfg.Mode == core.ModeInteractive && next == core.ActionAwaitInput {
		a.status = core.StatusWaitingForInput
	} else {
		a.status = core.StatusCompleted
	}
	now := time.Now().UTC()
	a.endTime = &now
	a.logger.Debug("agent.execute.finished", "session", a.id, "status", string(a.status))
}

// failTurn finalizes the turn in the Error state and shapes the non-throwing
// error response.
func (a *Agent) failTurn(message string) *core.Response {
	a.memory.AddMessage(core.NewMessage(core.RoleAssistant, message))
	a.status = core.StatusError
	now := time.Now().UTC()
	a.endTime = &now
	return &core.Response{
		Message:    message,
		NextAction: core.ActionComplete,
	}
}

// persistIfConfigured writes a snapshot after a successful turn. Persistence
// faults are logged, never raised: Execute's no-throw guarantee wins.
func (a *Agent) persistIfConfigured(ctx context.Context) {
	if !a.cfg.Persistence.Enabled {
		return
	}
	if err := a.memory.Persist(ctx); err != nil {
		a.logger.Error("agent.persist.failed", "session", a.id, "error", err.Error())
	}
}

// Restore loads the persisted snapshot (if any) into session memory. A
// missing snapshot leaves the session empty.
func (a *Agent) Restore(ctx context.Context) error {
	if !a.cfg.Persistence.Enabled {
		return nil
	}
	return a.memory.Load(ctx)
}
