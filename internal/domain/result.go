package domain

import "fmt"

// Result is the uniform envelope returned by every tool invocation. Exactly
// one of Output and Error is populated, gated by Success. Results are created
// fresh per invocation and returned by value; they are never shared or
// mutated after construction, except for the execution layer stamping Meta.
type Result struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`

	// Meta carries execution bookkeeping such as tool_id, invocation_id and
	// execution_time_ms. It is informational and never part of the
	// success/failure contract.
	Meta map[string]any `json:"metadata,omitempty"`
}

// Ok builds a success result with the given output payload.
func Ok(output map[string]any) Result {
	return Result{Success: true, Output: output}
}

// Fail builds a failure result carrying a readable error message.
func Fail(message string) Result {
	return Result{Success: false, Error: message}
}

// Failf builds a failure result from a format string.
func Failf(format string, args ...any) Result {
	return Fail(fmt.Sprintf(format, args...))
}

// WithMeta returns a copy of the result with key set in Meta.
func (r Result) WithMeta(key string, value any) Result {
	meta := make(map[string]any, len(r.Meta)+1)
	for k, v := range r.Meta {
		meta[k] = v
	}
	meta[key] = value
	r.Meta = meta
	return r
}
