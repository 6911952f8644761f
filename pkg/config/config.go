package config

import "time"

// Config is the root configuration structure for Stagehand.
// It is resolved once at process start (file, then environment overrides)
// and treated as immutable for the lifetime of the server.
type Config struct {
	// Server contains HTTP server configuration: listen address, timeouts,
	// and shutdown behavior.
	Server ServerConfig `yaml:"server"`

	// Content contains local content resolution configuration: the serving
	// root and the default document substituted for "/".
	Content ContentConfig `yaml:"content"`

	// Proxy contains upstream fallback configuration: the remote origin,
	// outbound timeout, and request identification.
	Proxy ProxyConfig `yaml:"proxy"`

	// LiveReload contains configuration for the file watcher and the
	// browser reload channel.
	LiveReload LiveReloadConfig `yaml:"livereload"`

	// AccessLog contains configuration for the SQLite request journal.
	AccessLog AccessLogConfig `yaml:"accesslog"`

	// Telemetry contains observability configuration: logging, metrics,
	// and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:3000", ":3000").
	// Default: "127.0.0.1:3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Generous by default since proxied assets can be large.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown
	// after an interrupt signal.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ContentConfig contains configuration for local content resolution.
type ContentConfig struct {
	// Root is the directory local files are served from.
	// Default: "." (the process working directory)
	Root string `yaml:"root"`

	// DefaultDocument is the path substituted when a client requests "/".
	// Must start with "/".
	// Default: "/index.html"
	DefaultDocument string `yaml:"default_document"`
}

// ProxyConfig contains configuration for the upstream fallback.
type ProxyConfig struct {
	// Origin is the base URL requests fall back to when no local file
	// exists, e.g. "https://main--site--org.aem.page". When empty, the
	// origin is derived from the git checkout at the content root.
	Origin string `yaml:"origin"`

	// PreviewDomain is the domain suffix used when deriving the origin
	// from a git checkout.
	// Default: "aem.page"
	PreviewDomain string `yaml:"preview_domain"`

	// Timeout bounds each outbound request so a hung upstream cannot
	// stall a local request indefinitely.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent identifies outbound requests to the upstream.
	// Default: "stagehand (local development proxy)"
	UserAgent string `yaml:"user_agent"`
}

// LiveReloadConfig contains configuration for file watching and browser
// reload notifications.
type LiveReloadConfig struct {
	// Enabled controls whether the content root is watched for changes.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period after a file event before a reload
	// notification is sent.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// AccessLogConfig contains configuration for the SQLite request journal.
type AccessLogConfig struct {
	// Enabled controls whether request outcomes are journaled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: ".stagehand/access.db"
	Path string `yaml:"path"`

	// AsyncBuffer is the size of the async write channel. Records are
	// dropped rather than blocking request handling when the buffer fills.
	// Default: 1024
	AsyncBuffer int `yaml:"async_buffer"`

	// BusyTimeout is how long to wait for database locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// RetentionDays is the number of days to retain journal rows.
	// 0 disables pruning.
	// Default: 14
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduling retention pruning.
	// Default: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text", "console").
	// Default: "text"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "stagehand"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name attached to exported spans.
	// Default: "stagehand"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of requests to sample, 0.0 to 1.0.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS on the exporter connection.
	// Default: true (local collectors rarely carry certificates)
	Insecure bool `yaml:"insecure"`

	// Timeout bounds the exporter connection and export calls.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
