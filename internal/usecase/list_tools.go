package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/agentstudio/toolbridge/internal/domain"
)

// ListToolsUseCase provides the functionality to list available tools.
type ListToolsUseCase struct {
	registry ToolRegistry
	logger   *slog.Logger
}

// NewListToolsUseCase creates a new ListToolsUseCase.
func NewListToolsUseCase(registry ToolRegistry, logger *slog.Logger) *ListToolsUseCase {
	return &ListToolsUseCase{
		registry: registry,
		logger:   logger.With("usecase", "ListTools"),
	}
}

// Execute returns descriptor snapshots for the registered tools matching the
// filter, in registration order.
func (uc *ListToolsUseCase) Execute(ctx context.Context, filter ListFilter) []domain.Descriptor {
	descs := uc.registry.List(ctx, filter)
	uc.logger.Debug("Listed tools", slog.Int("count", len(descs)))
	return descs
}

// Describe returns the descriptor for a single tool id.
func (uc *ListToolsUseCase) Describe(ctx context.Context, id string) (domain.Descriptor, error) {
	tool, err := uc.registry.Get(ctx, id)
	if err != nil {
		return domain.Descriptor{}, fmt.Errorf("describe tool %s: %w", id, err)
	}
	return tool.Describe(), nil
}
