package reasoning

import (
	"context"
	"strings"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
	"github.com/notwitcheer/env-dev-ai-agent/core"
	"github.com/notwitcheer/env-dev-ai-agent/logging"
)

// Rule is one entry of a deterministic rule list. Rules are evaluated against
// the raw input in order; the first match wins and produces at most one
// capability call.
type Rule struct {
	// Name labels the rule in logs and decision metadata.
	Name string
	// Match reports whether the rule applies to the input.
	Match func(input string) bool
	// Message is the user-facing text of the resulting Decision. When a Call
	// is present the message typically narrates the requested invocation.
	Message string
	// Call is the optional single capability call requested by this rule.
	Call *core.CapabilityCall
	// NextAction overrides the continuation directive (default complete).
	NextAction core.NextAction
}

// MatchKeywords builds a case-insensitive any-of substring matcher.
func MatchKeywords(words ...string) func(string) bool {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return func(input string) bool {
		in := strings.ToLower(input)
		for _, w := range lowered {
			if strings.Contains(in, w) {
				return true
			}
		}
		return false
	}
}

// RuleProvider is the deterministic reasoning strategy: an ordered rule list
// with a terminal default that lists the available capabilities. It is a pure
// function of its input and has no failure mode beyond "no rule matched".
type RuleProvider struct {
	rules  []Rule
	logger logging.Logger
}

// RuleProviderOptions configure a RuleProvider.
type RuleProviderOptions struct {
	Logger logging.Logger
}

// NewRuleProvider constructs a provider over the given ordered rules.
func NewRuleProvider(rules []Rule, optFns ...func(o *RuleProviderOptions)) *RuleProvider {
	opts := RuleProviderOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RuleProvider{rules: rules, logger: logging.OrNoOp(opts.Logger)}
}

// Think implements Provider. The first matching rule produces the Decision;
// when nothing matches, a terminal default returns a capability listing.
func (p *RuleProvider) Think(_ context.Context, req Request) (*core.Decision, error) {
	for _, rule := range p.rules {
		if rule.Match == nil || !rule.Match(req.Input) {
			continue
		}
		p.logger.Debug("reasoning.rule.matched", "rule", rule.Name)

		decision := &core.Decision{
			Message:         rule.Message,
			CapabilityCalls: []core.CapabilityCall{},
			NextAction:      rule.NextAction,
			Metadata:        map[string]any{"rule": rule.Name},
		}
		if rule.Call != nil {
			decision.CapabilityCalls = []core.CapabilityCall{*rule.Call}
		}
		if decision.NextAction == "" {
			decision.NextAction = core.ActionComplete
		}
		return decision, nil
	}

	p.logger.Debug("reasoning.rule.default", "input_len", len(req.Input))
	return &core.Decision{
		Message: "I could not match your request to an action. Available capabilities:\n" +
			capability.FormatManifest(req.Capabilities),
		CapabilityCalls: []core.CapabilityCall{},
		NextAction:      core.ActionComplete,
		Metadata:        map[string]any{"rule": "default"},
	}, nil
}
