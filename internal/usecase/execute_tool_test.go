package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstudio/toolbridge/internal/adapter/outbound/memregistry"
	"github.com/agentstudio/toolbridge/internal/domain"
	"github.com/agentstudio/toolbridge/internal/usecase"
)

// echoTool mirrors the canonical echo contract: one required string "text".
type echoTool struct {
	domain.Base
}

func newEchoTool(enabled bool) *echoTool {
	return &echoTool{Base: domain.NewBase(domain.Descriptor{
		ID:          "echo",
		Name:        "Echo",
		Description: "Returns the input unchanged.",
		Parameters: []domain.Parameter{
			{Name: "text", Type: domain.TypeString, Required: true},
		},
		Enabled: enabled,
	}, nil)}
}

func (t *echoTool) Invoke(ctx context.Context, args map[string]any) (domain.Result, error) {
	if err := t.Validate(args); err != nil {
		return domain.Fail(err.Error()), nil
	}
	return domain.Ok(map[string]any{"text": args["text"]}), nil
}

// faultyTool simulates tools that panic or report infrastructure faults.
type faultyTool struct {
	domain.Base
	panicMsg string
	err      error
}

func newFaultyTool(id string) *faultyTool {
	return &faultyTool{Base: domain.NewBase(domain.Descriptor{
		ID: id, Name: id, Description: "always fails", Enabled: true,
	}, nil)}
}

func (t *faultyTool) Invoke(ctx context.Context, args map[string]any) (domain.Result, error) {
	if t.panicMsg != "" {
		panic(t.panicMsg)
	}
	return domain.Result{}, t.err
}

// configTool records the config it last saw so tests can observe merges.
type configTool struct {
	domain.Base
}

func newConfigTool() *configTool {
	return &configTool{Base: domain.NewBase(domain.Descriptor{
		ID: "configured", Name: "Configured", Description: "echoes its config", Enabled: true,
	}, map[string]any{"endpoint": "https://default", "retries": 3})}
}

func (t *configTool) WithConfig(overrides map[string]any) (domain.Contract, error) {
	if _, bad := overrides["endpoint"].(int); bad {
		return nil, errors.New("endpoint must be a string, got int")
	}
	return &configTool{Base: domain.NewBase(t.Describe(), t.MergeConfig(overrides))}, nil
}

func (t *configTool) Invoke(ctx context.Context, args map[string]any) (domain.Result, error) {
	return domain.Ok(t.ConfigMap()), nil
}

func newExecuteFixture(t *testing.T, contracts ...domain.Contract) *usecase.ExecuteToolUseCase {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	registry := memregistry.New(logger)
	for _, c := range contracts {
		require.NoError(t, registry.Register(context.Background(), c))
	}
	return usecase.NewExecuteToolUseCase(registry, logger)
}

func TestExecuteTool_Success(t *testing.T) {
	uc := newExecuteFixture(t, newEchoTool(true))

	result := uc.Execute(context.Background(), "echo", map[string]any{"text": "hi"}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, map[string]any{"text": "hi"}, result.Output)
	assert.Empty(t, result.Error)
	assert.Equal(t, "echo", result.Meta["tool_id"])
	assert.NotEmpty(t, result.Meta["invocation_id"])
	assert.Contains(t, result.Meta, "execution_time_ms")
}

func TestExecuteTool_NotFound(t *testing.T) {
	uc := newExecuteFixture(t)

	result := uc.Execute(context.Background(), "missing_tool", map[string]any{}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, "tool not found: missing_tool", result.Error)
}

func TestExecuteTool_Disabled(t *testing.T) {
	uc := newExecuteFixture(t, newEchoTool(false))

	result := uc.Execute(context.Background(), "echo", map[string]any{"text": "hi"}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, "tool disabled", result.Error)
}

func TestExecuteTool_ValidationFailureNamesParameter(t *testing.T) {
	uc := newExecuteFixture(t, newEchoTool(true))

	result := uc.Execute(context.Background(), "echo", map[string]any{}, nil)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "text")
}

func TestExecuteTool_PanicContained(t *testing.T) {
	tool := newFaultyTool("explode")
	tool.panicMsg = "kaboom"
	uc := newExecuteFixture(t, tool)

	var result domain.Result
	assert.NotPanics(t, func() {
		result = uc.Execute(context.Background(), "explode", nil, nil)
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "kaboom")
}

func TestExecuteTool_InfrastructureErrorBecomesFailure(t *testing.T) {
	tool := newFaultyTool("flaky")
	tool.err = errors.New("upstream timeout exceeded")
	uc := newExecuteFixture(t, tool)

	result := uc.Execute(context.Background(), "flaky", nil, nil)

	assert.False(t, result.Success)
	assert.Equal(t, "upstream timeout exceeded", result.Error)
}

func TestExecuteTool_RuntimeConfigMerge(t *testing.T) {
	uc := newExecuteFixture(t, newConfigTool())

	t.Run("overrides merge over construction config", func(t *testing.T) {
		result := uc.Execute(context.Background(), "configured", nil, map[string]any{"endpoint": "https://runtime"})
		require.True(t, result.Success)
		assert.Equal(t, "https://runtime", result.Output["endpoint"])
		assert.Equal(t, 3, result.Output["retries"])
	})

	t.Run("without overrides the construction config applies", func(t *testing.T) {
		result := uc.Execute(context.Background(), "configured", nil, nil)
		require.True(t, result.Success)
		assert.Equal(t, "https://default", result.Output["endpoint"])
	})

	t.Run("invalid overrides fail the invocation", func(t *testing.T) {
		result := uc.Execute(context.Background(), "configured", nil, map[string]any{"endpoint": 42})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "invalid tool config")
	})

	t.Run("non-reconfigurable tools ignore overrides", func(t *testing.T) {
		uc := newExecuteFixture(t, newEchoTool(true))
		result := uc.Execute(context.Background(), "echo", map[string]any{"text": "hi"}, map[string]any{"ignored": true})
		assert.True(t, result.Success)
	})
}

func TestExecuteTool_ReplaceSupersedes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	registry := memregistry.New(logger)
	ctx := context.Background()

	require.NoError(t, registry.Register(ctx, newEchoTool(true)))
	require.NoError(t, registry.Replace(ctx, newEchoTool(false))) // superseded by a disabled variant

	uc := usecase.NewExecuteToolUseCase(registry, logger)
	result := uc.Execute(ctx, "echo", map[string]any{"text": "hi"}, nil)

	assert.False(t, result.Success)
	assert.Equal(t, "tool disabled", result.Error)
}

func TestExecuteToolCall(t *testing.T) {
	uc := newExecuteFixture(t, newEchoTool(true))

	t.Run("parses arguments JSON and stamps tool_call_id", func(t *testing.T) {
		result := uc.ExecuteToolCall(context.Background(), openai.ToolCall{
			ID:   "call_123",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      "echo",
				Arguments: `{"text": "hi"}`,
			},
		}, nil)

		assert.True(t, result.Success)
		assert.Equal(t, map[string]any{"text": "hi"}, result.Output)
		assert.Equal(t, "call_123", result.Meta["tool_call_id"])
	})

	t.Run("malformed arguments JSON", func(t *testing.T) {
		result := uc.ExecuteToolCall(context.Background(), openai.ToolCall{
			ID:   "call_456",
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      "echo",
				Arguments: `{"text": `,
			},
		}, nil)

		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "invalid arguments JSON")
		assert.Equal(t, "call_456", result.Meta["tool_call_id"])
	})

	t.Run("unsupported call type", func(t *testing.T) {
		result := uc.ExecuteToolCall(context.Background(), openai.ToolCall{ID: "c", Type: "retrieval"}, nil)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "unsupported tool call type")
	})
}

func TestExecuteBatch(t *testing.T) {
	boom := newFaultyTool("boom")
	boom.panicMsg = "batch panic"
	uc := newExecuteFixture(t, newEchoTool(true), boom)

	results := uc.ExecuteBatch(context.Background(), []usecase.BatchCall{
		{ToolID: "echo", Parameters: map[string]any{"text": "one"}},
		{ToolID: "missing", Parameters: nil},
		{ToolID: "boom", Parameters: nil},
		{ToolID: "echo", Parameters: map[string]any{"text": "two"}},
	}, nil)

	require.Len(t, results, 4)
	assert.True(t, results[0].Success)
	assert.Equal(t, "one", results[0].Output["text"])
	assert.False(t, results[1].Success)
	assert.Equal(t, "tool not found: missing", results[1].Error)
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "batch panic")
	assert.True(t, results[3].Success)
	assert.Equal(t, "two", results[3].Output["text"])
}
