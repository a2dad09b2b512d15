// Package model defines the vendor-neutral chat transport used by the
// generative reasoning provider, plus a deterministic MockModel for tests and
// examples. Vendor adapters live in the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"
)

// ChatMessage is one role-tagged turn sent to a model backend. The system
// prompt travels separately so adapters can map it to vendor-specific fields.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", ...
}

// Model is the minimal interface the reasoning layer needs from a text
// generation backend. Chat blocks until the full reply is available; callers
// bound the wait through ctx.
type Model interface {
	Chat(ctx context.Context, system string, messages []ChatMessage) (string, error)
	Info() Info
}

// MockModel is a lightweight in-memory Model for tests and examples. Replies
// are matched on the content of the final message; unmatched inputs receive a
// generic echo. A forced error simulates transport failure.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs an empty MockModel.
func NewMockModel() *MockModel {
	return &MockModel{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a canned reply for an exact final-message content.
func (m *MockModel) AddResponse(input, reply string) { m.responses[input] = reply }

// FailWith makes every subsequent Chat call return err.
func (m *MockModel) FailWith(err error) { m.err = err }

// Chat implements Model.
func (m *MockModel) Chat(_ context.Context, _ string, messages []ChatMessage) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := messages[len(messages)-1]
	if reply, ok := m.responses[last.Content]; ok {
		return reply, nil
	}
	return fmt.Sprintf("Mock response to: %s", last.Content), nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
