// Package memory implements per-session working memory and the append-only
// conversation log, plus snapshot persistence through a pluggable Store.
//
// One SessionMemory instance is owned by exactly one session and is never
// shared. The runtime serializes all access per session (see the concurrency
// contract in the agent package), so SessionMemory carries no internal lock.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/notwitcheer/env-dev-ai-agent/core"
	"github.com/notwitcheer/env-dev-ai-agent/logging"
)

// ErrNoStore is returned by Persist/Load when no snapshot store is configured.
var ErrNoStore = errors.New("no snapshot store configured")

// Snapshot is the sole on-disk contract for persisted session memory. Message
// timestamps and the snapshot timestamp serialize as RFC 3339 strings.
type Snapshot struct {
	WorkingMemory       map[string]any `json:"workingMemory"`
	ConversationHistory []core.Message `json:"conversationHistory"`
	Timestamp           time.Time      `json:"timestamp"`
}

// Stats summarizes the current size of a session's memory.
type Stats struct {
	WorkingMemorySize  int    `json:"workingMemorySize"`
	ConversationLength int    `json:"conversationLength"`
	SessionID          string `json:"sessionId"`
}

// Options configure a SessionMemory.
type Options struct {
	Store  Store
	Logger logging.Logger
}

// SessionMemory binds one session's key/value working memory to its ordered
// conversation history. Working memory is last-write-wins with unique keys;
// the history is append-only and never reordered.
type SessionMemory struct {
	sessionID string
	store     Store
	logger    logging.Logger
	working   map[string]any
	history   []core.Message
}

// New constructs an empty SessionMemory for the given session id.
func New(sessionID string, optFns ...func(o *Options)) *SessionMemory {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SessionMemory{
		sessionID: sessionID,
		store:     opts.Store,
		logger:    logging.OrNoOp(opts.Logger),
		working:   make(map[string]any),
	}
}

// SessionID returns the owning session's id.
func (m *SessionMemory) SessionID() string { return m.sessionID }

// Set stores a value under key, overwriting any previous value.
func (m *SessionMemory) Set(key string, value any) {
	m.working[key] = value
}

// Get returns the value and existence flag for a working memory key.
func (m *SessionMemory) Get(key string) (any, bool) {
	v, ok := m.working[key]
	return v, ok
}

// Keys returns the working memory keys. Order is not part of the contract;
// keys are sorted for deterministic output.
func (m *SessionMemory) Keys() []string {
	keys := make([]string, 0, len(m.working))
	for k := range m.working {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Delete removes a working memory key, reporting whether it existed.
func (m *SessionMemory) Delete(key string) bool {
	if _, ok := m.working[key]; !ok {
		return false
	}
	delete(m.working, key)
	return true
}

// WorkingMemory returns a shallow copy of the key/value map.
func (m *SessionMemory) WorkingMemory() map[string]any {
	out := make(map[string]any, len(m.working))
	for k, v := range m.working {
		out[k] = v
	}
	return out
}

// AddMessage appends a message to the conversation history, stamping the
// current UTC time when the timestamp is zero. Prior entries are never
// reordered or dropped.
func (m *SessionMemory) AddMessage(msg core.Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	m.history = append(m.history, msg)
}

// Messages returns a defensive copy of the full conversation history.
func (m *SessionMemory) Messages() []core.Message {
	out := make([]core.Message, len(m.history))
	copy(out, m.history)
	return out
}

// Recent returns the last min(n, length) messages in original order.
func (m *SessionMemory) Recent(n int) []core.Message {
	if n <= 0 {
		return []core.Message{}
	}
	if n > len(m.history) {
		n = len(m.history)
	}
	out := make([]core.Message, n)
	copy(out, m.history[len(m.history)-n:])
	return out
}

// Search performs a case-insensitive substring scan over message contents,
// preserving history order.
func (m *SessionMemory) Search(substr string) []core.Message {
	needle := strings.ToLower(substr)
	var out []core.Message
	for _, msg := range m.history {
		if strings.Contains(strings.ToLower(msg.Content), needle) {
			out = append(out, msg)
		}
	}
	return out
}

// Prune drops all but the last keep messages. This is the only operation that
// removes history entries.
func (m *SessionMemory) Prune(keep int) int {
	if keep < 0 {
		keep = 0
	}
	if keep >= len(m.history) {
		return 0
	}
	dropped := len(m.history) - keep
	m.history = append([]core.Message{}, m.history[dropped:]...)
	m.logger.Debug("memory.pruned", "session", m.sessionID, "dropped", dropped)
	return dropped
}

// Stats returns current memory sizes for observability.
func (m *SessionMemory) Stats() Stats {
	return Stats{
		WorkingMemorySize:  len(m.working),
		ConversationLength: len(m.history),
		SessionID:          m.sessionID,
	}
}

// Export returns a deep, JSON-safe snapshot of the current state. Values that
// cannot be marshaled fail the export rather than producing a partial copy.
func (m *SessionMemory) Export() (*Snapshot, error) {
	snap := Snapshot{
		WorkingMemory:       m.working,
		ConversationHistory: m.history,
		Timestamp:           time.Now().UTC(),
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("export session %s: %w", m.sessionID, err)
	}
	var out Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("export session %s: %w", m.sessionID, err)
	}
	if out.WorkingMemory == nil {
		out.WorkingMemory = map[string]any{}
	}
	if out.ConversationHistory == nil {
		out.ConversationHistory = []core.Message{}
	}
	return &out, nil
}

// Persist writes the current state as one atomic snapshot through the
// configured store. The store guarantees resource release on every exit path.
func (m *SessionMemory) Persist(ctx context.Context) error {
	if m.store == nil {
		return ErrNoStore
	}
	snap, err := m.Export()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist session %s: %w", m.sessionID, err)
	}
	if err := m.store.Save(ctx, m.sessionID, raw); err != nil {
		return fmt.Errorf("persist session %s: %w", m.sessionID, err)
	}
	m.logger.Debug("memory.persisted", "session", m.sessionID, "bytes", len(raw))
	return nil
}

// Load reads the snapshot for this session and replaces current state. A
// missing snapshot is not an error: it yields empty working memory and
// history, the same as a fresh session.
func (m *SessionMemory) Load(ctx context.Context) error {
	if m.store == nil {
		return ErrNoStore
	}
	raw, err := m.store.Load(ctx, m.sessionID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			m.working = make(map[string]any)
			m.history = nil
			return nil
		}
		return fmt.Errorf("load session %s: %w", m.sessionID, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("load session %s: decode snapshot: %w", m.sessionID, err)
	}
	m.working = snap.WorkingMemory
	if m.working == nil {
		m.working = make(map[string]any)
	}
	m.history = snap.ConversationHistory
	m.logger.Debug("memory.loaded", "session", m.sessionID, "messages", len(m.history))
	return nil
}
