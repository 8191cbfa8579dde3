package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/agentstudio/toolbridge/internal/domain"
)

const instrumentationName = "github.com/agentstudio/toolbridge/internal/usecase"

// ExecuteToolUseCase bridges an agent's tool selection to a registry lookup
// and invocation. Execute never returns an error and never panics outward:
// every failure mode — unknown id, disabled tool, invalid arguments, tool
// fault — comes back as a failure Result, because the caller is an automated
// reasoning loop that must keep proceeding rather than crash.
type ExecuteToolUseCase struct {
	registry ToolRegistry
	logger   *slog.Logger
	tracer   trace.Tracer

	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewExecuteToolUseCase creates a new ExecuteToolUseCase.
func NewExecuteToolUseCase(registry ToolRegistry, logger *slog.Logger) *ExecuteToolUseCase {
	meter := otel.Meter(instrumentationName)
	invocations, err := meter.Int64Counter("tool.invocations",
		metric.WithDescription("Number of tool invocations by id and status."))
	if err != nil {
		logger.Warn("Failed to create invocation counter", slog.Any("error", err))
	}
	duration, err := meter.Float64Histogram("tool.invocation.duration",
		metric.WithDescription("Tool invocation duration in milliseconds."),
		metric.WithUnit("ms"))
	if err != nil {
		logger.Warn("Failed to create duration histogram", slog.Any("error", err))
	}
	return &ExecuteToolUseCase{
		registry:    registry,
		logger:      logger.With("usecase", "ExecuteTool"),
		tracer:      otel.Tracer(instrumentationName),
		invocations: invocations,
		duration:    duration,
	}
}

// Execute resolves toolID, merges runtimeConfig into the tool's config, and
// invokes it with params. The returned Result always carries tool_id,
// invocation_id and execution_time_ms metadata.
func (uc *ExecuteToolUseCase) Execute(ctx context.Context, toolID string, params map[string]any, runtimeConfig map[string]any) domain.Result {
	log := uc.logger.With(slog.String("tool_id", toolID))
	start := time.Now()

	ctx, span := uc.tracer.Start(ctx, "tool.execute",
		trace.WithAttributes(attribute.String("tool.id", toolID)))
	defer span.End()

	result := uc.invoke(ctx, log, toolID, params, runtimeConfig)

	elapsed := time.Since(start)
	result = result.
		WithMeta("tool_id", toolID).
		WithMeta("invocation_id", uuid.NewString()).
		WithMeta("execution_time_ms", float64(elapsed.Microseconds())/1000.0)

	status := "ok"
	if !result.Success {
		status = "error"
		span.SetStatus(codes.Error, result.Error)
		log.Warn("Tool invocation failed", slog.String("error", result.Error), slog.Duration("elapsed", elapsed))
	} else {
		log.Info("Tool invocation succeeded", slog.Duration("elapsed", elapsed))
	}
	span.SetAttributes(attribute.Bool("tool.success", result.Success))

	attrs := metric.WithAttributes(
		attribute.String("tool.id", toolID),
		attribute.String("status", status))
	if uc.invocations != nil {
		uc.invocations.Add(ctx, 1, attrs)
	}
	if uc.duration != nil {
		uc.duration.Record(ctx, float64(elapsed.Microseconds())/1000.0, attrs)
	}
	return result
}

// invoke performs the lookup/configure/invoke steps with panic containment.
// A panicking tool must not take down the orchestration loop.
func (uc *ExecuteToolUseCase) invoke(ctx context.Context, log *slog.Logger, toolID string, params map[string]any, runtimeConfig map[string]any) (result domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Tool invocation panicked", slog.Any("panic", r))
			result = domain.Failf("%v", r)
		}
	}()

	tool, err := uc.registry.Get(ctx, toolID)
	if err != nil {
		if errors.Is(err, ErrToolNotFound) {
			return domain.Failf("tool not found: %s", toolID)
		}
		return domain.Failf("tool lookup failed: %v", err)
	}

	if !tool.Describe().Enabled {
		return domain.Fail(ErrToolDisabled.Error())
	}

	if len(runtimeConfig) > 0 {
		if rc, ok := tool.(domain.Reconfigurable); ok {
			tool, err = rc.WithConfig(runtimeConfig)
			if err != nil {
				return domain.Failf("invalid tool config: %v", err)
			}
		} else {
			log.Debug("Tool does not accept runtime config, ignoring overrides")
		}
	}

	result, err = tool.Invoke(ctx, params)
	if err != nil {
		return domain.Fail(err.Error())
	}
	return result
}

// ExecuteToolCall runs a tool call in the OpenAI function-calling wire shape:
// the function name is the tool id and the arguments arrive as a JSON string.
// toolConfigs maps tool id to the per-agent config to apply for that call.
func (uc *ExecuteToolUseCase) ExecuteToolCall(ctx context.Context, call openai.ToolCall, toolConfigs map[string]map[string]any) domain.Result {
	if call.Type != openai.ToolTypeFunction {
		return domain.Failf("unsupported tool call type: %s", call.Type)
	}

	params := make(map[string]any)
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &params); err != nil {
			return domain.Failf("invalid arguments JSON: %v", err).WithMeta("tool_call_id", call.ID)
		}
	}

	result := uc.Execute(ctx, call.Function.Name, params, toolConfigs[call.Function.Name])
	return result.WithMeta("tool_call_id", call.ID)
}

// BatchCall is one entry of a batch execution request.
type BatchCall struct {
	ToolID     string
	Parameters map[string]any
}

// ExecuteBatch runs the calls concurrently and returns results in input
// order. Individual failures are ordinary failure Results; the batch itself
// cannot fail.
func (uc *ExecuteToolUseCase) ExecuteBatch(ctx context.Context, calls []BatchCall, toolConfigs map[string]map[string]any) []domain.Result {
	results := make([]domain.Result, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call BatchCall) {
			defer wg.Done()
			results[i] = uc.Execute(ctx, call.ToolID, call.Parameters, toolConfigs[call.ToolID])
		}(i, call)
	}
	wg.Wait()
	return results
}
