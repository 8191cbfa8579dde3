package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// ToolSettings carries the per-tool section of the YAML configuration file:
// whether the tool is enabled and its construction-time config mapping
// (endpoints, DSNs, timeouts). Secrets for per-agent bindings are NOT stored
// here; they arrive at invocation time through the execute request's config.
type ToolSettings struct {
	Enabled *bool          `yaml:"enabled,omitempty"`
	Config  map[string]any `yaml:"config,omitempty"`
}

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	Tools map[string]ToolSettings `yaml:"tools"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Fields are loaded from environment variables with
// the prefix "TOOLBRIDGE_", overriding file settings.
type Config struct {
	// Config File Path (Loaded first from env)
	ConfigFilePath string `envconfig:"CONFIG_FILE" default:"configs/toolbridge.yaml"`

	// File-loaded fields
	Tools map[string]ToolSettings

	// Environment-overridable fields
	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	MCPListenAddr            string        `envconfig:"MCP_LISTEN_ADDR" default:":8082"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout        time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout       time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ServerIdleTimeout        time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ToolEnabled reports the configured enabled flag for a tool id, falling
// back to the given default when the file has no opinion.
func (c *Config) ToolEnabled(id string, fallback bool) bool {
	settings, ok := c.Tools[id]
	if !ok || settings.Enabled == nil {
		return fallback
	}
	return *settings.Enabled
}

// ToolConfig returns the construction-time config mapping for a tool id.
func (c *Config) ToolConfig(id string) map[string]any {
	return c.Tools[id].Config
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration first from environment variables (to get the file
// path), then from the YAML file, and finally merges/overrides with
// environment variables again. A missing file at the default path is
// tolerated; a missing file at an explicitly configured path is an error.
func Load() (*Config, error) {
	var initialCfg Config
	if err := envconfig.Process("toolbridge", &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	fileCfg := FileConfig{}
	explicitPath := os.Getenv("TOOLBRIDGE_CONFIG_FILE") != ""
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
			}
			slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath)
		case os.IsNotExist(err) && !explicitPath:
			slog.Info("No config file found at default path, using defaults/env vars only.", "path", initialCfg.ConfigFilePath)
		default:
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
	}

	finalCfg := initialCfg
	finalCfg.Tools = fileCfg.Tools

	// Process environment variables again to allow overrides over file settings.
	if err := envconfig.Process("toolbridge", &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	return &finalCfg, nil
}
