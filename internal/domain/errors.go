package domain

import (
	"fmt"
	"strings"
)

// ValidationError aggregates every argument violation found in one
// validation pass. Collecting all violations (rather than failing on the
// first) gives form UIs and LLM retries the complete picture at once.
type ValidationError struct {
	Violations []string
}

// Addf appends a formatted violation.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "invalid parameters"
	}
	return "invalid parameters: " + strings.Join(e.Violations, "; ")
}
