package domain

import (
	"fmt"
	"math"
	"reflect"
)

// ParameterType enumerates the JSON-schema primitive types a tool
// parameter may declare.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeInteger ParameterType = "integer"
	TypeBoolean ParameterType = "boolean"
	TypeArray   ParameterType = "array"
	TypeObject  ParameterType = "object"
)

// Valid reports whether t is one of the supported parameter types.
func (t ParameterType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Parameter describes one named input a tool accepts. It maps directly to a
// property in the JSON-schema object exported for LLM function calling.
// Parameters are declared once as part of a tool's Descriptor and are
// immutable afterwards.
type Parameter struct {
	Name        string        `json:"name"`
	Type        ParameterType `json:"type"`
	Description string        `json:"description"`
	Required    bool          `json:"required"`

	// Default is the value assumed when the argument is omitted. A required
	// parameter must not carry a default.
	Default any `json:"default,omitempty"`

	// Enum restricts the argument to a fixed set of values.
	Enum []any `json:"enum,omitempty"`

	// Items and Properties carry nested schema fragments for array and
	// object parameters.
	Items      map[string]any `json:"items,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Validate checks the declaration invariants of the parameter itself, not an
// argument value. It is called when a tool is registered so that malformed
// declarations fail at startup rather than mid-invocation.
func (p Parameter) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("parameter name is empty")
	}
	if !p.Type.Valid() {
		return fmt.Errorf("parameter %q has unknown type %q", p.Name, p.Type)
	}
	if p.Required && p.Default != nil {
		return fmt.Errorf("parameter %q is required and must not declare a default", p.Name)
	}
	if p.Default != nil {
		if err := p.CheckValue(p.Default); err != nil {
			return fmt.Errorf("parameter %q default: %w", p.Name, err)
		}
	}
	return nil
}

// CheckValue verifies that value matches the declared type and, if an enum is
// declared, is a member of it.
func (p Parameter) CheckValue(value any) error {
	if !matchesType(p.Type, value) {
		return fmt.Errorf("must be of type %s", p.Type)
	}
	if len(p.Enum) > 0 && !enumContains(p.Enum, value) {
		return fmt.Errorf("must be one of %v", p.Enum)
	}
	return nil
}

// Schema renders the parameter as a JSON-schema property fragment.
func (p Parameter) Schema() map[string]any {
	s := map[string]any{
		"type":        string(p.Type),
		"description": p.Description,
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}
	if p.Default != nil {
		s["default"] = p.Default
	}
	if len(p.Items) > 0 {
		s["items"] = p.Items
	}
	if len(p.Properties) > 0 {
		s["properties"] = p.Properties
	}
	return s
}

// matchesType reports whether value conforms to the declared parameter type.
// Numeric checks accept the float64 values produced by encoding/json as well
// as native Go integer types, since arguments arrive from both decoded JSON
// and direct Go callers.
func matchesType(t ParameterType, value any) bool {
	if value == nil {
		return false
	}
	switch t {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeInteger:
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64:
			return v == math.Trunc(v)
		case float32:
			return float64(v) == math.Trunc(float64(v))
		}
		return false
	case TypeNumber:
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		}
		return false
	case TypeArray:
		return reflect.ValueOf(value).Kind() == reflect.Slice
	case TypeObject:
		return reflect.ValueOf(value).Kind() == reflect.Map
	}
	return false
}

// enumContains reports membership with numeric values compared by magnitude,
// so that a JSON-decoded float64(2) matches a declared int(2).
func enumContains(enum []any, value any) bool {
	for _, candidate := range enum {
		if reflect.DeepEqual(candidate, value) {
			return true
		}
		cf, cok := asFloat(candidate)
		vf, vok := asFloat(value)
		if cok && vok && cf == vf {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
