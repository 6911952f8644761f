package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:3000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	// Content defaults
	DefaultContentRoot     = "."
	DefaultDocument        = "/index.html"

	// Proxy defaults
	DefaultPreviewDomain = "aem.page"
	DefaultProxyTimeout  = 10 * time.Second
	DefaultUserAgent     = "stagehand (local development proxy)"

	// Live reload defaults
	DefaultLiveReloadEnabled  = true
	DefaultLiveReloadDebounce = 100 * time.Millisecond

	// Access log defaults
	DefaultAccessLogEnabled     = true
	DefaultAccessLogPath        = ".stagehand/access.db"
	DefaultAccessLogAsyncBuffer = 1024
	DefaultAccessLogBusyTimeout = 5 * time.Second
	DefaultRetentionDays        = 14
	DefaultPruneSchedule        = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultMetricsNamespace   = "stagehand"
	DefaultTracingEnabled     = false
	DefaultTracingService     = "stagehand"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingInsecure    = true
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultConfig returns a Config populated with every default value.
// LoadConfig unmarshals file contents over this struct so that booleans
// which default to true survive an absent YAML key.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Content: ContentConfig{
			Root:            DefaultContentRoot,
			DefaultDocument: DefaultDocument,
		},
		Proxy: ProxyConfig{
			PreviewDomain: DefaultPreviewDomain,
			Timeout:       DefaultProxyTimeout,
			UserAgent:     DefaultUserAgent,
		},
		LiveReload: LiveReloadConfig{
			Enabled:  DefaultLiveReloadEnabled,
			Debounce: DefaultLiveReloadDebounce,
		},
		AccessLog: AccessLogConfig{
			Enabled:       DefaultAccessLogEnabled,
			Path:          DefaultAccessLogPath,
			AsyncBuffer:   DefaultAccessLogAsyncBuffer,
			BusyTimeout:   DefaultAccessLogBusyTimeout,
			RetentionDays: DefaultRetentionDays,
			PruneSchedule: DefaultPruneSchedule,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:   DefaultMetricsEnabled,
				Namespace: DefaultMetricsNamespace,
			},
			Tracing: TracingConfig{
				Enabled:     DefaultTracingEnabled,
				ServiceName: DefaultTracingService,
				SampleRatio: DefaultTracingSampleRatio,
				Insecure:    DefaultTracingInsecure,
				Timeout:     DefaultTracingTimeout,
			},
		},
	}
}

// ApplyDefaults fills zero-valued fields with defaults. It is idempotent and
// safe to call on configs constructed by hand (for example in tests).
// Boolean fields are not touched; use DefaultConfig as the base when the
// true-by-default behavior matters.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Content.Root == "" {
		cfg.Content.Root = DefaultContentRoot
	}
	if cfg.Content.DefaultDocument == "" {
		cfg.Content.DefaultDocument = DefaultDocument
	}
	if cfg.Proxy.PreviewDomain == "" {
		cfg.Proxy.PreviewDomain = DefaultPreviewDomain
	}
	if cfg.Proxy.Timeout == 0 {
		cfg.Proxy.Timeout = DefaultProxyTimeout
	}
	if cfg.Proxy.UserAgent == "" {
		cfg.Proxy.UserAgent = DefaultUserAgent
	}
	if cfg.LiveReload.Debounce == 0 {
		cfg.LiveReload.Debounce = DefaultLiveReloadDebounce
	}
	if cfg.AccessLog.Path == "" {
		cfg.AccessLog.Path = DefaultAccessLogPath
	}
	if cfg.AccessLog.AsyncBuffer == 0 {
		cfg.AccessLog.AsyncBuffer = DefaultAccessLogAsyncBuffer
	}
	if cfg.AccessLog.BusyTimeout == 0 {
		cfg.AccessLog.BusyTimeout = DefaultAccessLogBusyTimeout
	}
	if cfg.AccessLog.PruneSchedule == "" {
		cfg.AccessLog.PruneSchedule = DefaultPruneSchedule
	}
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingService
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}
