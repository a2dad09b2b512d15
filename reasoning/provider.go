// Package reasoning turns a prompt, conversation history and capability
// manifest into a structured Decision. Two interchangeable strategies are
// provided: a deterministic rule matcher and a generative provider backed by a
// model transport. Providers contain their own faults: transport failures and
// malformed output degrade into a terminal Decision instead of propagating.
package reasoning

import (
	"context"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
	"github.com/notwitcheer/env-dev-ai-agent/core"
)

// Request carries everything a provider needs for one reasoning step.
type Request struct {
	// SystemPrompt is the session's base instruction.
	SystemPrompt string
	// History is the conversation so far, oldest first.
	History []core.Message
	// Capabilities is the manifest of capabilities available to the session.
	Capabilities []capability.Descriptor
	// Input is the current user turn.
	Input string
}

// Provider produces a Decision from a reasoning request. Implementations
// never return a nil Decision alongside a nil error; a non-nil error is
// reserved for programming faults and is converted to an error response by
// the agent's single catch boundary.
type Provider interface {
	Think(ctx context.Context, req Request) (*core.Decision, error)
}

// Summarizer is the optional synthesis contract. Providers implementing it
// are asked for a user-facing summary after capability results have been
// folded into the history; a failure falls back to the original Decision
// message.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}
