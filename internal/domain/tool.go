package domain

import (
	"context"
	"fmt"
	"strings"
)

// Descriptor is the static identity and parameter declaration of a tool.
// It is constructed once, when the tool is built, and never mutated after
// the tool has been registered.
type Descriptor struct {
	// ID is the globally unique identifier used as the registry key
	// (e.g., "webhook", "db_query").
	ID string `json:"id"`

	// Name is the human-readable label.
	Name string `json:"name"`

	// Description explains what the tool does. The LLM reads this to decide
	// whether the tool applies, so it should be written for the model.
	Description string `json:"description"`

	Version  string   `json:"version"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	// Parameters is the ordered input declaration. Names must be unique.
	Parameters []Parameter `json:"parameters"`

	RequiresAuth bool   `json:"requires_auth"`
	AuthType     string `json:"auth_type,omitempty"`

	// Enabled gates the tool out of listings, schema export, and execution
	// without unregistering it.
	Enabled bool `json:"is_enabled"`
}

// Validate checks the descriptor's declaration invariants. Registries call
// this on registration so broken declarations surface at startup.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("tool id is empty")
	}
	seen := make(map[string]struct{}, len(d.Parameters))
	for _, p := range d.Parameters {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("tool %q: %w", d.ID, err)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("tool %q declares parameter %q twice", d.ID, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// ValidateArgs checks an argument map against the declared parameters and
// collects every violation instead of stopping at the first, so that a UI
// form or an LLM retry sees the full picture in one pass. A nil return means
// the arguments are acceptable.
func (d Descriptor) ValidateArgs(args map[string]any) *ValidationError {
	verr := &ValidationError{}
	for _, p := range d.Parameters {
		value, present := args[p.Name]
		if !present {
			if p.Required {
				verr.Addf("missing required parameter: %s", p.Name)
			}
			continue
		}
		if err := p.CheckValue(value); err != nil {
			verr.Addf("parameter %q %v", p.Name, err)
		}
	}
	if len(verr.Violations) == 0 {
		return nil
	}
	return verr
}

// InputSchema renders the parameter declaration as a JSON-schema object of
// the shape consumed by LLM function-calling APIs:
// {type: "object", properties: {...}, required: [...]}.
func (d Descriptor) InputSchema() map[string]any {
	properties := make(map[string]any, len(d.Parameters))
	required := make([]string, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		properties[p.Name] = p.Schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Contract is the capability every tool implements. Tools are stateless
// request/response capabilities: Describe and Validate never touch the
// network, and Invoke performs the tool's side effect.
type Contract interface {
	// Describe returns the static declaration. It has no side effects and
	// must return identical output on every call.
	Describe() Descriptor

	// Validate checks arguments against the declaration without performing
	// any side-effecting work. It returns a *ValidationError collecting all
	// violations, or nil.
	Validate(args map[string]any) error

	// Invoke validates the arguments, performs the tool's side effect, and
	// returns a Result. Input-shape problems short-circuit to a failure
	// Result; a non-nil error is reserved for infrastructure faults
	// (exhausted timeouts, broken connections) and is converted to a failure
	// Result at the execution boundary.
	Invoke(ctx context.Context, args map[string]any) (Result, error)
}

// Reconfigurable is implemented by tools whose config can be refreshed per
// invocation, e.g. a webhook target bound at agent-configuration time rather
// than at tool registration. WithConfig returns a derived contract with the
// overrides merged in; the receiver is not mutated.
type Reconfigurable interface {
	WithConfig(overrides map[string]any) (Contract, error)
}

// Base carries the descriptor and construction-time config shared by tool
// implementations. Embedding Base supplies the Describe and Validate halves
// of Contract; the tool itself implements Invoke.
type Base struct {
	desc   Descriptor
	config map[string]any
}

// NewBase builds the common tool core. The config map is copied so callers
// cannot mutate it after construction.
func NewBase(desc Descriptor, config map[string]any) Base {
	return Base{desc: desc, config: cloneConfig(config)}
}

// Describe implements Contract.
func (b *Base) Describe() Descriptor { return b.desc }

// Validate implements Contract.
func (b *Base) Validate(args map[string]any) error {
	if verr := b.desc.ValidateArgs(args); verr != nil {
		return verr
	}
	return nil
}

// Config returns the construction-time config value for key.
func (b *Base) Config(key string) (any, bool) {
	v, ok := b.config[key]
	return v, ok
}

// ConfigMap returns a copy of the full config mapping, typically to merge
// runtime overrides into a derived tool.
func (b *Base) ConfigMap() map[string]any { return cloneConfig(b.config) }

// SetEnabled flips the enabled flag. It is intended for startup wiring,
// before the tool is registered; descriptors are immutable afterwards.
func (b *Base) SetEnabled(enabled bool) { b.desc.Enabled = enabled }

// MergeConfig overlays overrides on a copy of the construction-time config.
func (b *Base) MergeConfig(overrides map[string]any) map[string]any {
	merged := cloneConfig(b.config)
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

func cloneConfig(config map[string]any) map[string]any {
	clone := make(map[string]any, len(config))
	for k, v := range config {
		clone[k] = v
	}
	return clone
}
