// Package capability implements the capability subsystem: a catalog of named,
// externally implemented functions an agent may invoke, with declared
// parameters, injectable validation and a uniform pass/fail result. The
// registry is effect-agnostic; side effects (filesystem, network) are entirely
// the capability's responsibility.
package capability

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors raised by Register. Invoke never raises; its faults fold
// into a failed Result instead.
var (
	// ErrDuplicateCapability is returned when registering a name twice.
	ErrDuplicateCapability = errors.New("capability already registered")
	// ErrCapabilityNotFound identifies lookups of unregistered names.
	ErrCapabilityNotFound = errors.New("capability not found")
)

// Error codes carried in Result metadata for failed invocations.
const (
	CodeNotFound          = "CAPABILITY_NOT_FOUND"
	CodeMissingParameters = "MISSING_PARAMETERS"
	CodeInvalidParameter  = "INVALID_PARAMETER"
	CodeExecutionError    = "EXECUTION_ERROR"
	CodeNotPermitted      = "NOT_PERMITTED"
)

// Kind is the tagged variant of a parameter's expected value shape.
type Kind string

const (
	// KindString expects a string value.
	KindString Kind = "string"
	// KindNumber expects any numeric value (JSON decoding yields float64).
	KindNumber Kind = "number"
	// KindBoolean expects a bool value.
	KindBoolean Kind = "boolean"
	// KindObject expects a map[string]any value.
	KindObject Kind = "object"
	// KindArray expects a []any value.
	KindArray Kind = "array"
)

// Validator is an injectable predicate run against a supplied parameter value
// after the kind check. Returning a non-nil error fails the invocation before
// the capability executes.
type Validator func(value any) error

// Parameter declares one named argument of a capability.
type Parameter struct {
	Name        string    `json:"name"`
	Kind        Kind      `json:"kind"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	Validator   Validator `json:"-"`
}

// Descriptor is the catalog entry for a capability: identity, documentation
// and the declared parameter list. Names are unique within a registry.
type Descriptor struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Parameters      []Parameter `json:"parameters,omitempty"`
	PermissionLevel string      `json:"permissionLevel,omitempty"`
}

// Result is the uniform outcome of a capability invocation. It is always
// well-formed: a failed lookup, validation or execution produces a Result
// with Success false and a populated Error, never a raised fault.
type Result struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Capability is the external interface consumed by the registry. Execute is
// invoked at most once per requested call per turn with already validated
// parameters. A returned error (or panic) is contained by the registry.
type Capability interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, params map[string]any) (any, error)
}

// Func adapts a plain Go function into a Capability, pairing it with an
// explicit descriptor. It carries no mutable state after construction.
type Func struct {
	descriptor Descriptor
	fn         func(ctx context.Context, params map[string]any) (any, error)
}

// NewFunc constructs a Func capability from a descriptor and implementation.
func NewFunc(
	name, description string,
	params []Parameter,
	fn func(ctx context.Context, params map[string]any) (any, error),
) *Func {
	return &Func{
		descriptor: Descriptor{Name: name, Description: description, Parameters: params},
		fn:         fn,
	}
}

// Descriptor returns the catalog entry for this capability.
func (f *Func) Descriptor() Descriptor { return f.descriptor }

// Execute runs the wrapped function.
func (f *Func) Execute(ctx context.Context, params map[string]any) (any, error) {
	return f.fn(ctx, params)
}

// ValidationError reports a parameter that failed the kind check or its
// injected validator.
type ValidationError struct {
	Capability string `json:"capability"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q for capability %q: %s", e.Field, e.Capability, e.Message)
}

// checkKind verifies that value matches the declared kind. nil passes; absent
// optional parameters are not checked at all.
func checkKind(value any, kind Kind) error {
	if value == nil {
		return nil
	}
	switch kind {
	case KindString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
	case KindNumber:
		switch value.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
		default:
			return fmt.Errorf("expected number, got %T", value)
		}
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	case KindObject:
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %T", value)
		}
	case KindArray:
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("expected array, got %T", value)
		}
	}
	return nil
}
