package memregistry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/agentstudio/toolbridge/internal/domain"
	"github.com/agentstudio/toolbridge/internal/usecase"
)

// Registry provides the in-memory implementation of usecase.ToolRegistry.
// NOTE: This implementation is not persistent; tools are re-registered from
// static code at every boot.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]domain.Contract
	order   []string
	logger  *slog.Logger
}

// New creates a new in-memory registry.
func New(logger *slog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]domain.Contract),
		logger:  logger.With("component", "mem_registry"),
	}
}

// Register inserts the tool under its Describe().ID. The descriptor's
// declaration invariants are checked here so malformed tools fail at
// startup. Duplicate ids are rejected with usecase.ErrToolConflict.
func (r *Registry) Register(ctx context.Context, tool domain.Contract) error {
	desc := tool.Describe()
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("register: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[desc.ID]; exists {
		return fmt.Errorf("%w: %s", usecase.ErrToolConflict, desc.ID)
	}
	r.entries[desc.ID] = tool
	r.order = append(r.order, desc.ID)
	r.logger.Info("Registered tool", slog.String("tool_id", desc.ID), slog.Int("total_tools", len(r.entries)))
	return nil
}

// Replace inserts the tool, superseding any existing registration under the
// same id. Supersedes are logged at warn level; they are expected during
// development re-registration, not in production wiring.
func (r *Registry) Replace(ctx context.Context, tool domain.Contract) error {
	desc := tool.Describe()
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("replace: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[desc.ID]; exists {
		r.logger.Warn("Replacing registered tool", slog.String("tool_id", desc.ID))
	} else {
		r.order = append(r.order, desc.ID)
	}
	r.entries[desc.ID] = tool
	return nil
}

// Get retrieves a tool contract by id.
func (r *Registry) Get(ctx context.Context, id string) (domain.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.entries[id]
	if !ok {
		r.logger.Debug("Tool not found", slog.String("tool_id", id))
		return nil, fmt.Errorf("%w: %s", usecase.ErrToolNotFound, id)
	}
	return tool, nil
}

// List returns descriptor snapshots in registration order, recomputed from
// the current map on every call.
func (r *Registry) List(ctx context.Context, filter usecase.ListFilter) []domain.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descs := make([]domain.Descriptor, 0, len(r.order))
	for _, id := range r.order {
		tool, ok := r.entries[id]
		if !ok {
			continue
		}
		desc := tool.Describe()
		if filter.EnabledOnly && !desc.Enabled {
			continue
		}
		if filter.Category != "" && desc.Category != filter.Category {
			continue
		}
		descs = append(descs, desc)
	}
	return descs
}

// Unregister removes the tool for id.
func (r *Registry) Unregister(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", usecase.ErrToolNotFound, id)
	}
	delete(r.entries, id)
	for i, key := range r.order {
		if key == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Info("Unregistered tool", slog.String("tool_id", id))
	return nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
