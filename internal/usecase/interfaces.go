package usecase

import (
	"context"
	"errors"

	"github.com/agentstudio/toolbridge/internal/domain"
)

// Standard errors returned by use cases and adapters.
var (
	// ErrToolNotFound is returned by registries when an id is not present.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolConflict is returned when registering an id that already exists
	// without going through Replace.
	ErrToolConflict = errors.New("tool already registered")

	// ErrToolDisabled marks a known tool whose Enabled flag is off.
	ErrToolDisabled = errors.New("tool disabled")
)

// ListFilter narrows a registry listing. The zero value lists everything.
type ListFilter struct {
	Category    string
	EnabledOnly bool
}

// ToolRegistry is the process-wide catalog mapping tool id to contract.
// Implementations are in-memory only: tool definitions are code, so the
// catalog is rebuilt from static registrations at every boot.
//
// Registration is expected to happen single-threaded at startup, but
// implementations must still be safe for concurrent use because Replace and
// Unregister may be exercised while invocation traffic is running.
type ToolRegistry interface {
	// Register inserts the contract under its Describe().ID. Registering an
	// id twice returns ErrToolConflict; use Replace for explicit supersede.
	Register(ctx context.Context, tool domain.Contract) error

	// Replace inserts the contract, superseding any existing registration
	// under the same id.
	Replace(ctx context.Context, tool domain.Contract) error

	// Get returns the contract for id, or an error wrapping ErrToolNotFound.
	Get(ctx context.Context, id string) (domain.Contract, error)

	// List returns descriptor snapshots in registration order, recomputed
	// from the current map on every call.
	List(ctx context.Context, filter ListFilter) []domain.Descriptor

	// Unregister removes the contract for id, or returns an error wrapping
	// ErrToolNotFound.
	Unregister(ctx context.Context, id string) error
}
