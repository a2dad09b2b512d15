// Package openai adapts the OpenAI Chat Completions API to the generic
// model.Model interface.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/notwitcheer/env-dev-ai-agent/model"
)

// Options configure the OpenAI model adapter. Fields mirror a minimal subset
// of Chat Completion parameters; extend via functional options without
// breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind model.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client, which reads
// its API key from the environment.
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Chat implements model.Model with a non-streaming completion.
func (m *Model) Chat(ctx context.Context, system string, messages []model.ChatMessage) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
		Messages:            buildMessages(system, messages),
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system string, messages []model.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			// Tool results and unknown roles travel as user turns; the
			// prompt already labels their origin.
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}
