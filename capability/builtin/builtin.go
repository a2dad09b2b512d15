// Package builtin ships a small capability set used by examples, tests and
// the CLI: arithmetic, file I/O, market data fetchers and a mocked social
// feed. Each capability owns its side effects; the registry stays
// effect-agnostic.
package builtin

import (
	"context"
	"fmt"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
)

// Add returns the "add" capability: numeric a + b.
func Add() capability.Capability {
	return capability.NewFunc(
		"add",
		"Add two numbers and return the result.",
		[]capability.Parameter{
			{Name: "a", Kind: capability.KindNumber, Description: "First addend", Required: true},
			{Name: "b", Kind: capability.KindNumber, Description: "Second addend", Required: true},
		},
		func(_ context.Context, params map[string]any) (any, error) {
			a, err := toFloat(params["a"])
			if err != nil {
				return nil, fmt.Errorf("parameter a: %w", err)
			}
			b, err := toFloat(params["b"])
			if err != nil {
				return nil, fmt.Errorf("parameter b: %w", err)
			}
			return map[string]any{"result": a + b}, nil
		},
	)
}

// Echo returns the "echo" capability, mainly useful in tests and demos.
func Echo() capability.Capability {
	return capability.NewFunc(
		"echo",
		"Echo the given text back unchanged.",
		[]capability.Parameter{
			{Name: "text", Kind: capability.KindString, Description: "Text to echo", Required: true},
		},
		func(_ context.Context, params map[string]any) (any, error) {
			return params["text"], nil
		},
	)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
