package reasoning

import (
	"encoding/json"
	"strings"

	"github.com/notwitcheer/env-dev-ai-agent/core"
)

// DecodeStage records which stage of the reply-parsing protocol produced a
// Decision. Each stage is independently testable.
type DecodeStage int

const (
	// StageNotAttempted is the zero value before decoding runs.
	StageNotAttempted DecodeStage = iota
	// StageStrict means the full reply decoded as the contract object.
	StageStrict
	// StageSubstring means a balanced JSON object substring decoded.
	StageSubstring
	// StageFallback means no object decoded; the raw reply became the message.
	StageFallback
)

// String returns the stage name used in decision metadata.
func (s DecodeStage) String() string {
	switch s {
	case StageStrict:
		return "strict"
	case StageSubstring:
		return "substring"
	case StageFallback:
		return "fallback"
	default:
		return "not_attempted"
	}
}

// replyPayload is the output contract the generative provider asks the model
// to produce.
type replyPayload struct {
	Reasoning       string                `json:"reasoning"`
	Message         string                `json:"message"`
	CapabilityCalls []core.CapabilityCall `json:"capabilityCalls"`
	NextAction      string                `json:"nextAction"`
}

// DecodeReply parses a free-text model reply into a Decision using the staged
// protocol: strict decode of the whole reply, then the first balanced JSON
// object substring that decodes, then a plain fallback Decision whose message
// is the raw reply. The raw reply, any reasoning field and the decode stage
// are retained in Decision metadata.
func DecodeReply(raw string) (*core.Decision, DecodeStage) {
	trimmed := strings.TrimSpace(raw)

	// Only an object can satisfy the contract. Bare JSON scalars such as
	// "null" would otherwise strict-decode into a zero payload.
	if strings.HasPrefix(trimmed, "{") {
		var payload replyPayload
		if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
			return payloadDecision(payload, raw, StageStrict), StageStrict
		}
	}

	if candidate, ok := firstBalancedObject(trimmed); ok {
		payload := replyPayload{}
		if err := json.Unmarshal([]byte(candidate), &payload); err == nil {
			return payloadDecision(payload, raw, StageSubstring), StageSubstring
		}
	}

	return &core.Decision{
		Message:         raw,
		CapabilityCalls: []core.CapabilityCall{},
		NextAction:      core.ActionComplete,
		Metadata: map[string]any{
			"raw_reply":    raw,
			"decode_stage": StageFallback.String(),
		},
	}, StageFallback
}

// payloadDecision coerces a decoded payload into a well-formed Decision:
// capability calls default to an empty slice and nextAction to a known enum
// value.
func payloadDecision(p replyPayload, raw string, stage DecodeStage) *core.Decision {
	calls := p.CapabilityCalls
	if calls == nil {
		calls = []core.CapabilityCall{}
	}
	md := map[string]any{
		"raw_reply":    raw,
		"decode_stage": stage.String(),
	}
	if p.Reasoning != "" {
		md["reasoning"] = p.Reasoning
	}
	return &core.Decision{
		Message:         p.Message,
		CapabilityCalls: calls,
		NextAction:      core.ParseNextAction(p.NextAction),
		Metadata:        md,
	}
}

// firstBalancedObject scans for the first '{' whose matching '}' closes a
// balanced object, honoring string literals and escapes. It returns successive
// candidates until one is balanced; decoding failures of a balanced candidate
// advance the scan to the next opening brace.
func firstBalancedObject(s string) (string, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		if end, ok := matchBrace(s, start); ok {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
			// Unbalanced quoting can still produce a brace-matched but
			// invalid candidate; keep scanning.
			continue
		}
	}
	return "", false
}

func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
