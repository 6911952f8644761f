package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// File contents are unmarshaled over DefaultConfig, so absent keys keep
// their default values. The result is validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention STAGEHAND_SECTION_FIELD (e.g., STAGEHAND_SERVER_LISTEN_ADDRESS)
// and always take precedence over file-based configuration.
//
// If path is empty, the built-in defaults are used as the base so the server
// can run without any configuration file at all.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = DefaultConfig()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format STAGEHAND_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("STAGEHAND_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("STAGEHAND_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("STAGEHAND_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("STAGEHAND_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Content overrides
	if val := os.Getenv("STAGEHAND_CONTENT_ROOT"); val != "" {
		cfg.Content.Root = val
	}
	if val := os.Getenv("STAGEHAND_CONTENT_DEFAULT_DOCUMENT"); val != "" {
		cfg.Content.DefaultDocument = val
	}

	// Proxy overrides
	if val := os.Getenv("STAGEHAND_PROXY_ORIGIN"); val != "" {
		cfg.Proxy.Origin = val
	}
	if val := os.Getenv("STAGEHAND_PROXY_PREVIEW_DOMAIN"); val != "" {
		cfg.Proxy.PreviewDomain = val
	}
	if val := os.Getenv("STAGEHAND_PROXY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.Timeout = d
		}
	}
	if val := os.Getenv("STAGEHAND_PROXY_USER_AGENT"); val != "" {
		cfg.Proxy.UserAgent = val
	}

	// Live reload overrides
	if val := os.Getenv("STAGEHAND_LIVERELOAD_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.LiveReload.Enabled = b
		}
	}
	if val := os.Getenv("STAGEHAND_LIVERELOAD_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.LiveReload.Debounce = d
		}
	}

	// Access log overrides
	if val := os.Getenv("STAGEHAND_ACCESSLOG_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.AccessLog.Enabled = b
		}
	}
	if val := os.Getenv("STAGEHAND_ACCESSLOG_PATH"); val != "" {
		cfg.AccessLog.Path = val
	}
	if val := os.Getenv("STAGEHAND_ACCESSLOG_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.AccessLog.RetentionDays = i
		}
	}
	if val := os.Getenv("STAGEHAND_ACCESSLOG_PRUNE_SCHEDULE"); val != "" {
		cfg.AccessLog.PruneSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("STAGEHAND_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("STAGEHAND_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("STAGEHAND_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("STAGEHAND_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("STAGEHAND_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("STAGEHAND_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
