package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author category of a conversation message.
type Role string

const (
	// RoleSystem marks instruction messages injected by the runtime.
	RoleSystem Role = "system"
	// RoleUser marks caller-supplied input.
	RoleUser Role = "user"
	// RoleAssistant marks responses produced by a reasoning provider.
	RoleAssistant Role = "assistant"
	// RoleTool marks serialized capability results folded into the history.
	RoleTool Role = "tool"
)

// Message is a single entry in a session's conversation history. Histories are
// append-only; ordering is the only index. After being appended a Message
// should be treated as immutable.
type Message struct {
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewMessage constructs a message stamped with the current UTC time.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// NewID generates a unique identifier for sessions and subagents.
func NewID() string { return uuid.NewString() }
