// Package tools holds the concrete tool contracts shipped with the service.
// Each tool embeds domain.Base for its declaration and implements Invoke
// against its upstream side effect.
package tools

import (
	"context"

	"github.com/agentstudio/toolbridge/internal/domain"
)

// Echo returns its input unchanged. It exists as a wiring smoke test for
// agent configurations and as the canonical example of a tool contract.
type Echo struct {
	domain.Base
}

// NewEcho constructs the echo tool.
func NewEcho() *Echo {
	return &Echo{Base: domain.NewBase(domain.Descriptor{
		ID:          "echo",
		Name:        "Echo",
		Description: "Returns the provided text unchanged. Useful for testing agent tool wiring.",
		Version:     "1.0.0",
		Category:    "utility",
		Parameters: []domain.Parameter{
			{
				Name:        "text",
				Type:        domain.TypeString,
				Description: "The text to echo back.",
				Required:    true,
			},
		},
		Enabled: true,
	}, nil)}
}

// Invoke implements domain.Contract.
func (t *Echo) Invoke(ctx context.Context, args map[string]any) (domain.Result, error) {
	if err := t.Validate(args); err != nil {
		return domain.Fail(err.Error()), nil
	}
	return domain.Ok(map[string]any{"text": args["text"]}), nil
}
