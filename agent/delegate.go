package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/notwitcheer/env-dev-ai-agent/core"
)

// Delegation errors. These are the only faults Spawn deliberately raises to
// its caller: they represent caller misuse rather than a recoverable runtime
// fault, which Execute would have contained instead.
var (
	// ErrSpawnNotPermitted is returned when the session configuration does
	// not allow spawning subagents.
	ErrSpawnNotPermitted = errors.New("session is not permitted to spawn subagents")
	// ErrSubagentQuota is returned when the subagent quota is exhausted.
	ErrSubagentQuota = errors.New("subagent quota exhausted")
)

// Spawn creates a child session under this agent's quota, runs the given task
// to completion and records the child's terminal state as an immutable
// snapshot in the parent's subagent map.
//
// The child shares the capability registry and the parent's session id
// namespace but owns an independent, empty session memory. It holds no live
// reference back to the parent, only the informational parent id. Spawn calls
// are awaited sequentially; there is no implicit parallel fan-out.
func (a *Agent) Spawn(ctx context.Context, childCfg core.SessionConfiguration, task string) (*core.SessionState, error) {
	if !a.cfg.CanSpawnSubagents {
		return nil, ErrSpawnNotPermitted
	}
	if len(a.subagents) >= a.cfg.MaxSubagents {
		return nil, fmt.Errorf("%w: limit %d", ErrSubagentQuota, a.cfg.MaxSubagents)
	}

	childID := a.id + ":" + core.NewID()
	child := New(childCfg, a.registry, a.provider, func(o *Options) {
		o.SessionID = childID
		o.ParentID = a.id
		o.Logger = a.logger
	})

	a.logger.Info("agent.spawn", "session", a.id, "child", childID, "child_name", childCfg.Name)

	// Execute never raises; a failed child turn surfaces in the snapshot's
	// status and final message.
	child.Execute(ctx, task)

	snapshot := child.State()
	a.subagents[childID] = snapshot
	return snapshot.Clone(), nil
}

// Subagents returns immutable snapshots of all spawned children keyed by id.
func (a *Agent) Subagents() map[string]*core.SessionState {
	out := make(map[string]*core.SessionState, len(a.subagents))
	for id, child := range a.subagents {
		out[id] = child.Clone()
	}
	return out
}

// SubagentCount returns the number of children spawned so far.
func (a *Agent) SubagentCount() int { return len(a.subagents) }
