package reasoning

import (
	"context"
	"fmt"
	"strings"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
	"github.com/notwitcheer/env-dev-ai-agent/core"
	"github.com/notwitcheer/env-dev-ai-agent/logging"
	"github.com/notwitcheer/env-dev-ai-agent/model"
)

// outputContract is the explicit reply format embedded in every generative
// prompt. The decode protocol in parse.go is its counterpart.
const outputContract = `Respond with a single JSON object of this shape:
{
  "reasoning": "brief private reasoning (optional)",
  "message": "user-facing reply",
  "capabilityCalls": [{"name": "capability_name", "parameters": {}, "reasoning": "why (optional)"}],
  "nextAction": "continue" | "awaitInput" | "spawnSubagent" | "complete"
}
Use capabilityCalls only for capabilities listed above, with their declared parameters. Use an empty array when no capability is needed.`

// GenerativeProvider drives reasoning through an external model transport. It
// embeds the capability manifest and output contract into the system prompt,
// replays mapped history and decodes the reply with the staged protocol.
// Transport failures are caught at this boundary and converted into a terminal
// Decision carrying the error text; Think never returns an error for them.
type GenerativeProvider struct {
	model      model.Model
	logger     logging.Logger
	maxHistory int
}

// GenerativeProviderOptions configure a GenerativeProvider.
type GenerativeProviderOptions struct {
	Logger logging.Logger
	// MaxHistory caps how many trailing history messages are replayed to the
	// model. Zero or negative means no cap.
	MaxHistory int
}

// NewGenerativeProvider constructs a provider over the given model transport.
func NewGenerativeProvider(m model.Model, optFns ...func(o *GenerativeProviderOptions)) *GenerativeProvider {
	opts := GenerativeProviderOptions{Logger: logging.NoOpLogger{}, MaxHistory: 20}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &GenerativeProvider{
		model:      m,
		logger:     logging.OrNoOp(opts.Logger),
		maxHistory: opts.MaxHistory,
	}
}

// Think implements Provider.
func (p *GenerativeProvider) Think(ctx context.Context, req Request) (*core.Decision, error) {
	system := p.buildSystemPrompt(req)
	messages := p.mapHistory(req.History)
	messages = append(messages, model.ChatMessage{Role: "user", Content: req.Input})

	reply, err := p.model.Chat(ctx, system, messages)
	if err != nil {
		p.logger.Error("reasoning.generate.transport_error", "model", p.model.Info().Name, "error", err.Error())
		return &core.Decision{
			Message:         fmt.Sprintf("Reasoning provider error: %v", err),
			CapabilityCalls: []core.CapabilityCall{},
			NextAction:      core.ActionComplete,
			Metadata:        map[string]any{"provider_error": err.Error()},
		}, nil
	}

	decision, stage := DecodeReply(reply)
	p.logger.Debug("reasoning.generate.decoded",
		"model", p.model.Info().Name,
		"stage", stage.String(),
		"capability_calls", len(decision.CapabilityCalls),
	)
	return decision, nil
}

// Summarize implements Summarizer: a second pass over the history (which now
// includes the appended tool messages) asking for a plain user-facing summary.
func (p *GenerativeProvider) Summarize(ctx context.Context, req Request) (string, error) {
	system := req.SystemPrompt +
		"\n\nCapability results for the user's request appear in the conversation as tool output. " +
		"Summarize the outcome for the user in plain language. Reply with text only, no JSON."

	messages := p.mapHistory(req.History)
	messages = append(messages, model.ChatMessage{
		Role:    "user",
		Content: "Summarize the results of the capability calls above for me.",
	})

	reply, err := p.model.Chat(ctx, system, messages)
	if err != nil {
		return "", fmt.Errorf("synthesis pass: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func (p *GenerativeProvider) buildSystemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(req.SystemPrompt)
	b.WriteString("\n\nAvailable capabilities:\n")
	b.WriteString(capability.FormatManifest(req.Capabilities))
	b.WriteString("\n\n")
	b.WriteString(outputContract)
	return b.String()
}

// mapHistory converts conversation messages to transport turns: the system
// role is excluded, assistant stays assistant, and tool results travel as
// labeled user turns.
func (p *GenerativeProvider) mapHistory(history []core.Message) []model.ChatMessage {
	if p.maxHistory > 0 && len(history) > p.maxHistory {
		history = history[len(history)-p.maxHistory:]
	}
	out := make([]model.ChatMessage, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			out = append(out, model.ChatMessage{Role: "assistant", Content: msg.Content})
		case core.RoleTool:
			out = append(out, model.ChatMessage{Role: "user", Content: "[capability result] " + msg.Content})
		default:
			out = append(out, model.ChatMessage{Role: "user", Content: msg.Content})
		}
	}
	return out
}
