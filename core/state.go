package core

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of an agent session.
type Status string

const (
	// StatusIdle means the session is constructed but not executing.
	StatusIdle Status = "idle"
	// StatusThinking means a reasoning call is in flight.
	StatusThinking Status = "thinking"
	// StatusExecutingCapability means requested capability calls are running.
	StatusExecutingCapability Status = "executing_capability"
	// StatusWaitingForInput means an interactive session awaits the caller.
	StatusWaitingForInput Status = "waiting_for_input"
	// StatusCompleted means the last turn finished normally.
	StatusCompleted Status = "completed"
	// StatusError means the last turn was terminated by a contained fault.
	StatusError Status = "error"
)

// SessionState captures the observable state of one agent session. The live
// copy is mutated across Execute calls by its owning agent; snapshots handed
// to parents at spawn time are deep copies and immutable thereafter.
type SessionState struct {
	ID             string                   `json:"id"`
	Config         SessionConfiguration     `json:"config"`
	Status         Status                   `json:"status"`
	ParentID       string                   `json:"parentId,omitempty"`
	IterationCount int                      `json:"iterationCount"`
	Messages       []Message                `json:"messages,omitempty"`
	WorkingMemory  map[string]any           `json:"workingMemory,omitempty"`
	Subagents      map[string]*SessionState `json:"subagents,omitempty"`
	StartTime      time.Time                `json:"startTime"`
	EndTime        *time.Time               `json:"endTime,omitempty"`
}

// Clone returns a deep copy of the state safe for independent ownership.
// Nested working-memory values and message metadata are copied through a JSON
// round trip so no mutation on either side can reach the other; values that
// cannot be serialized are kept by reference. Subagent snapshots are cloned
// recursively.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	for i := range clone.Messages {
		if md := clone.Messages[i].Metadata; md != nil {
			copied := make(map[string]any, len(md))
			for k, v := range md {
				copied[k] = deepCopyValue(v)
			}
			clone.Messages[i].Metadata = copied
		}
	}
	clone.WorkingMemory = make(map[string]any, len(s.WorkingMemory))
	for k, v := range s.WorkingMemory {
		clone.WorkingMemory[k] = deepCopyValue(v)
	}
	if s.Subagents != nil {
		clone.Subagents = make(map[string]*SessionState, len(s.Subagents))
		for id, child := range s.Subagents {
			clone.Subagents[id] = child.Clone()
		}
	}
	if s.EndTime != nil {
		end := *s.EndTime
		clone.EndTime = &end
	}
	return &clone
}

// deepCopyValue detaches a value from its source through a JSON round trip.
// Scalars pass through unchanged; maps, slices and structs come back as fresh
// map[string]any / []any trees. Unserializable values are returned as-is.
func deepCopyValue(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return v
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
