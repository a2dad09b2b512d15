package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionState_CloneDetachesNestedValues(t *testing.T) {
	msg := NewMessage(RoleTool, `{"success":true}`)
	msg.Metadata = map[string]any{"capability": "add", "success": true}
	state := &SessionState{
		ID:     "s1",
		Status: StatusCompleted,
		Messages: []Message{
			NewMessage(RoleUser, "add 2 and 3"),
			msg,
		},
		WorkingMemory: map[string]any{
			"add_result": map[string]any{
				"success": true,
				"data":    map[string]any{"result": 5.0},
			},
			"count": 3,
		},
	}

	clone := state.Clone()
	require.NotNil(t, clone)

	// Mutations through the clone must not reach nested values of the source.
	clone.WorkingMemory["add_result"].(map[string]any)["data"].(map[string]any)["result"] = -1.0
	clone.Messages[1].Metadata["capability"] = "forged"

	data := state.WorkingMemory["add_result"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, 5.0, data["result"])
	assert.Equal(t, "add", state.Messages[1].Metadata["capability"])
}

func TestSessionState_CloneSubagentsRecursively(t *testing.T) {
	child := &SessionState{
		ID:            "s1:child",
		ParentID:      "s1",
		WorkingMemory: map[string]any{"nested": map[string]any{"k": "v"}},
	}
	parent := &SessionState{
		ID:            "s1",
		WorkingMemory: map[string]any{},
		Subagents:     map[string]*SessionState{child.ID: child},
	}

	clone := parent.Clone()
	clone.Subagents[child.ID].WorkingMemory["nested"].(map[string]any)["k"] = "tampered"
	assert.Equal(t, "v", child.WorkingMemory["nested"].(map[string]any)["k"])
}

func TestSessionState_CloneNil(t *testing.T) {
	var state *SessionState
	assert.Nil(t, state.Clone())
}
