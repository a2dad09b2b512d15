package main

import (
	"github.com/notwitcheer/env-dev-ai-agent/core"
	"github.com/notwitcheer/env-dev-ai-agent/reasoning"
)

// demoRules is the deterministic rule list used when no generative backend is
// configured. It demonstrates the single-call-per-rule contract.
func demoRules() []reasoning.Rule {
	return []reasoning.Rule{
		{
			Name:    "greeting",
			Match:   reasoning.MatchKeywords("hello", "hi", "hey"),
			Message: "Hello! Ask me to add numbers or read the social feed.",
		},
		{
			Name:    "feed",
			Match:   reasoning.MatchKeywords("feed", "social", "posts"),
			Message: "Reading the social feed.",
			Call: &core.CapabilityCall{
				Name:       "read_social_feed",
				Parameters: map[string]any{},
			},
		},
	}
}
