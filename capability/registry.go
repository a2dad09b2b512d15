package capability

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/notwitcheer/env-dev-ai-agent/logging"
)

// Registry is the catalog, validator and dispatcher for capabilities. It is
// built once by the composition root and shared across sessions; the map
// carries no internal synchronization, so all Register calls must complete
// before concurrent Invoke traffic begins.
type Registry struct {
	capabilities map[string]Capability
	order        []string
	logger       logging.Logger
}

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	Logger logging.Logger
}

// NewRegistry constructs an empty registry.
func NewRegistry(optFns ...func(o *RegistryOptions)) *Registry {
	opts := RegistryOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{
		capabilities: make(map[string]Capability),
		logger:       logging.OrNoOp(opts.Logger),
	}
}

// Register adds a capability to the catalog. Names are unique: registering an
// existing name fails with ErrDuplicateCapability regardless of descriptor
// content.
func (r *Registry) Register(c Capability) error {
	desc := c.Descriptor()
	if desc.Name == "" {
		return fmt.Errorf("capability name is empty")
	}
	if _, exists := r.capabilities[desc.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCapability, desc.Name)
	}
	r.capabilities[desc.Name] = c
	r.order = append(r.order, desc.Name)
	r.logger.Debug("capability.registered", "capability", desc.Name)
	return nil
}

// Names returns the registered capability names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// ListDescriptors returns every registered descriptor in registration order.
func (r *Registry) ListDescriptors() []Descriptor {
	return r.Describe(nil)
}

// Describe returns descriptors for the requested subset of names, preserving
// registration order. A nil or empty subset selects the full catalog; unknown
// names are skipped.
func (r *Registry) Describe(subset []string) []Descriptor {
	var allowed map[string]bool
	if len(subset) > 0 {
		allowed = make(map[string]bool, len(subset))
		for _, name := range subset {
			allowed[name] = true
		}
	}
	descs := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		if allowed != nil && !allowed[name] {
			continue
		}
		descs = append(descs, r.capabilities[name].Descriptor())
	}
	return descs
}

// Invoke looks up, validates and executes a capability. It never raises: every
// fault (unknown name, missing or invalid parameters, execution error, panic)
// resolves to a Result with Success false and an error code in Metadata.
//
// Validation contract: missing required parameters are reported together
// before any validator runs; per-parameter validators then run in declaration
// order and fail fast on the first violation. The capability's Execute is only
// reached with fully validated parameters.
func (r *Registry) Invoke(ctx context.Context, name string, params map[string]any) *Result {
	c, exists := r.capabilities[name]
	if !exists {
		r.logger.Warn("capability.invoke.unknown", "capability", name)
		return failure(fmt.Sprintf("%v: %s", ErrCapabilityNotFound, name), CodeNotFound)
	}

	desc := c.Descriptor()
	if missing := missingRequired(desc, params); len(missing) > 0 {
		r.logger.Warn("capability.invoke.missing_parameters", "capability", name, "missing", missing)
		return failure(
			fmt.Sprintf("missing required parameters for %q: %s", name, strings.Join(missing, ", ")),
			CodeMissingParameters,
		)
	}

	for _, p := range desc.Parameters {
		value, supplied := params[p.Name]
		if !supplied {
			continue
		}
		if err := checkKind(value, p.Kind); err != nil {
			vErr := &ValidationError{Capability: name, Field: p.Name, Message: err.Error()}
			r.logger.Warn("capability.invoke.invalid_parameter", "capability", name, "field", p.Name, "error", err.Error())
			return failure(vErr.Error(), CodeInvalidParameter)
		}
		if p.Validator != nil {
			if err := p.Validator(value); err != nil {
				vErr := &ValidationError{Capability: name, Field: p.Name, Message: err.Error()}
				r.logger.Warn("capability.invoke.invalid_parameter", "capability", name, "field", p.Name, "error", err.Error())
				return failure(vErr.Error(), CodeInvalidParameter)
			}
		}
	}

	result := r.execute(ctx, c, name, params)
	if result.Success {
		r.logger.Info("capability.invoke.success", "capability", name)
	} else {
		r.logger.Error("capability.invoke.failed", "capability", name, "error", result.Error)
	}
	return result
}

// execute runs the capability body with panic containment.
func (r *Registry) execute(ctx context.Context, c Capability, name string, params map[string]any) (result *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("capability.invoke.panic", "capability", name, "recover", rec)
			result = failure(fmt.Sprintf("capability %q panicked: %v", name, rec), CodeExecutionError)
		}
	}()

	data, err := c.Execute(ctx, params)
	if err != nil {
		return failure(err.Error(), CodeExecutionError)
	}
	return &Result{Success: true, Data: data}
}

// missingRequired returns the names of required parameters absent from params,
// in declaration order.
func missingRequired(desc Descriptor, params map[string]any) []string {
	var missing []string
	for _, p := range desc.Parameters {
		if !p.Required {
			continue
		}
		if _, ok := params[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

func failure(message, code string) *Result {
	return &Result{
		Success:  false,
		Error:    message,
		Metadata: map[string]any{"error_code": code},
	}
}

// NotPermitted builds the failed Result used when a session requests a
// capability outside its configured allowlist. No lookup or execution occurs.
func NotPermitted(name string) *Result {
	return failure(fmt.Sprintf("capability %q is not permitted for this session", name), CodeNotPermitted)
}

// FormatManifest renders descriptors as a compact text manifest suitable for
// embedding in a reasoning prompt.
func FormatManifest(descs []Descriptor) string {
	if len(descs) == 0 {
		return "(no capabilities available)"
	}
	var b strings.Builder
	for i, d := range descs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", d.Name, d.Description)
		if len(d.Parameters) == 0 {
			continue
		}
		required := make([]string, 0, len(d.Parameters))
		optional := make([]string, 0, len(d.Parameters))
		for _, p := range d.Parameters {
			spec := fmt.Sprintf("%s (%s)", p.Name, p.Kind)
			if p.Required {
				required = append(required, spec)
			} else {
				optional = append(optional, spec)
			}
		}
		sort.Strings(optional)
		if len(required) > 0 {
			fmt.Fprintf(&b, "\n  required: %s", strings.Join(required, ", "))
		}
		if len(optional) > 0 {
			fmt.Fprintf(&b, "\n  optional: %s", strings.Join(optional, ", "))
		}
	}
	return b.String()
}
