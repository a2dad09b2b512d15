package core

// NextAction is the continuation directive attached to a Decision, telling the
// caller how the turn ended.
type NextAction string

const (
	// ActionContinue signals the agent expects further turns.
	ActionContinue NextAction = "continue"
	// ActionAwaitInput signals the agent is waiting for user input.
	ActionAwaitInput NextAction = "awaitInput"
	// ActionSpawnSubagent signals the agent wants a delegated child session.
	ActionSpawnSubagent NextAction = "spawnSubagent"
	// ActionComplete signals the turn (and possibly the task) is finished.
	ActionComplete NextAction = "complete"
)

// ParseNextAction coerces a raw string to a known NextAction, defaulting to
// ActionComplete for anything unrecognized.
func ParseNextAction(s string) NextAction {
	switch NextAction(s) {
	case ActionContinue, ActionAwaitInput, ActionSpawnSubagent, ActionComplete:
		return NextAction(s)
	default:
		return ActionComplete
	}
}

// CapabilityCall is a single capability invocation requested by a reasoning
// provider. Parameters are the raw decoded arguments; validation happens in
// the registry at dispatch time.
type CapabilityCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning,omitempty"`
}

// Decision is the structured output of one reasoning step: a user-facing
// message, zero or more requested capability calls and a continuation
// directive. Providers never return a nil Decision.
type Decision struct {
	Message         string           `json:"message"`
	CapabilityCalls []CapabilityCall `json:"capabilityCalls"`
	NextAction      NextAction       `json:"nextAction"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
}

// Response is the caller-facing result of one Execute turn. It mirrors the
// Decision shape so callers can act on requested calls and the continuation
// directive without reaching into session state.
type Response struct {
	Message         string           `json:"message"`
	CapabilityCalls []CapabilityCall `json:"capabilityCalls,omitempty"`
	NextAction      NextAction       `json:"nextAction"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
}
