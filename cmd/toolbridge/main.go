package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	mcpGoServer "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/agentstudio/toolbridge/configs"
	"github.com/agentstudio/toolbridge/internal/adapter/inbound/mcpserver"
	"github.com/agentstudio/toolbridge/internal/adapter/inbound/toolhttp"
	"github.com/agentstudio/toolbridge/internal/adapter/outbound/memregistry"
	"github.com/agentstudio/toolbridge/internal/adapter/outbound/tools"
	"github.com/agentstudio/toolbridge/internal/domain"
	"github.com/agentstudio/toolbridge/internal/usecase"
)

const (
	serviceName    = "toolbridge"
	serviceVersion = "0.1.0"
)

func main() {
	// === Command Line Flags ===
	var transport string
	flag.StringVar(&transport, "mcp-transport", "sse", "MCP transport mode: sse or stdio")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Configuration ===
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// === Logging ===
	logLevel := cfg.ParsedLogLevel()
	var logger *slog.Logger
	if transport == "stdio" {
		// In STDIO mode, log to file to avoid interfering with stdio communication.
		logFile, err := os.OpenFile("/tmp/toolbridge.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))
		} else {
			logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: logLevel}))
		}
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	}
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", logLevel.String()), slog.String("mcp_transport", transport))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := initOtelProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Tool Construction ===
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}

	registry := memregistry.New(logger)
	if err := registerTools(ctx, registry, cfg, httpClient); err != nil {
		logger.Error("Failed to register tools.", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Tool registry populated.", slog.Int("count", registry.Len()))

	// === Use Cases ===
	executeUC := usecase.NewExecuteToolUseCase(registry, logger)
	listUC := usecase.NewListToolsUseCase(registry, logger)

	// === MCP Server (mark3labs/mcp-go) ===
	mcpSrv := mcpGoServer.NewMCPServer(serviceName, serviceVersion)
	mcpserver.RegisterTools(mcpSrv, listUC.Execute(ctx, usecase.ListFilter{EnabledOnly: true}), executeUC, logger)

	// === REST Server ===
	mux := http.NewServeMux()
	handlers := toolhttp.NewHandlers(listUC, executeUC, logger)
	handlers.RegisterRoutes(mux)
	restServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	switch transport {
	case "stdio":
		logger.Info("Starting MCP in STDIO mode")
		stdioServer := mcpGoServer.NewStdioServer(mcpSrv)
		if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
			logger.Error("STDIO server error", slog.Any("error", err))
			os.Exit(1)
		}

	case "sse":
		sseServer := mcpGoServer.NewSSEServer(mcpSrv, mcpGoServer.WithBaseURL("http://"+cfg.MCPListenAddr))

		go func() {
			logger.Info("REST server starting.", slog.String("address", restServer.Addr))
			if err := restServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("REST server failed.", slog.Any("error", err))
				stop()
			}
		}()

		go func() {
			logger.Info("MCP SSE server starting.", slog.String("address", cfg.MCPListenAddr))
			if err := sseServer.Start(cfg.MCPListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP SSE server failed.", slog.Any("error", err))
				stop()
			}
		}()

		<-ctx.Done()

		logger.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := restServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("REST server graceful shutdown failed.", slog.Any("error", err))
		}
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("MCP SSE server graceful shutdown failed.", slog.Any("error", err))
		}
		logger.Info("Servers shut down gracefully.")

	default:
		logger.Error("Invalid MCP transport mode", slog.String("mcp_transport", transport))
		os.Exit(1)
	}
}

// registerTools constructs each shipped tool with its file-configured
// settings and registers it. Registration happens here, single-threaded,
// before any invocation traffic begins.
func registerTools(ctx context.Context, registry *memregistry.Registry, cfg *configs.Config, httpClient *http.Client) error {
	echo := tools.NewEcho()

	webhook, err := tools.NewWebhook(httpClient, cfg.ToolConfig("webhook"))
	if err != nil {
		return fmt.Errorf("construct webhook tool: %w", err)
	}

	fetch, err := tools.NewFetch(httpClient, cfg.ToolConfig("web_fetch"))
	if err != nil {
		return fmt.Errorf("construct web_fetch tool: %w", err)
	}

	dbQuery, err := tools.NewDBQuery(cfg.ToolConfig("db_query"))
	if err != nil {
		return fmt.Errorf("construct db_query tool: %w", err)
	}

	for _, entry := range []struct {
		base *domain.Base
		tool domain.Contract
	}{
		{&echo.Base, echo},
		{&webhook.Base, webhook},
		{&fetch.Base, fetch},
		{&dbQuery.Base, dbQuery},
	} {
		desc := entry.tool.Describe()
		entry.base.SetEnabled(cfg.ToolEnabled(desc.ID, desc.Enabled))
		if err := registry.Register(ctx, entry.tool); err != nil {
			return err
		}
	}
	return nil
}

// initOtelProvider initializes the OpenTelemetry SDK and sets up the OTLP
// trace exporter. It returns a shutdown function to be called on exit.
func initOtelProvider(cfg *configs.Config) (func(context.Context) error, error) {
	ctx := context.Background()

	if cfg.OtelExporterOtlpEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, OpenTelemetry tracing disabled.")
		return func(context.Context) error { return nil }, nil
	}

	slog.Info("Initializing OTLP exporter.", slog.String("endpoint", cfg.OtelExporterOtlpEndpoint))

	grpcOpts := []grpc.DialOption{}
	if cfg.OtelExporterOtlpInsecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		slog.Warn("Using insecure connection for OTLP exporter.")
	}

	conn, err := grpc.NewClient(cfg.OtelExporterOtlpEndpoint, grpcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to OTLP endpoint: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	slog.Info("OpenTelemetry TracerProvider configured.")

	return func(ctx context.Context) error {
		providerErr := tp.Shutdown(ctx)
		connErr := conn.Close()
		return errors.Join(providerErr, connErr)
	}, nil
}
