package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError; nil means valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateContent(&cfg.Content)...)
	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateAccessLog(&cfg.AccessLog)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "must not be empty"})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{"server.listen_address",
			fmt.Sprintf("must be host:port, got %q", cfg.ListenAddress)})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must not be negative"})
	}

	return errs
}

func validateContent(cfg *ContentConfig) []FieldError {
	var errs []FieldError

	if cfg.Root == "" {
		errs = append(errs, FieldError{"content.root", "must not be empty"})
	}
	if cfg.DefaultDocument == "" {
		errs = append(errs, FieldError{"content.default_document", "must not be empty"})
	} else if !strings.HasPrefix(cfg.DefaultDocument, "/") {
		errs = append(errs, FieldError{"content.default_document",
			fmt.Sprintf("must start with %q, got %q", "/", cfg.DefaultDocument)})
	}

	return errs
}

func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	// An empty origin is allowed here; it is resolved from the git checkout
	// at startup, which has its own failure mode.
	if cfg.Origin != "" {
		u, err := url.Parse(cfg.Origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{"proxy.origin",
				fmt.Sprintf("must be an absolute URL, got %q", cfg.Origin)})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, FieldError{"proxy.origin",
				fmt.Sprintf("scheme must be http or https, got %q", u.Scheme)})
		} else if strings.HasSuffix(cfg.Origin, "/") {
			// The target URL is origin+path; a trailing slash would double up.
			errs = append(errs, FieldError{"proxy.origin", "must not end with a slash"})
		}
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{"proxy.timeout", "must be positive"})
	}

	return errs
}

func validateAccessLog(cfg *AccessLogConfig) []FieldError {
	var errs []FieldError

	if !cfg.Enabled {
		return errs
	}
	if cfg.Path == "" {
		errs = append(errs, FieldError{"accesslog.path", "must not be empty when enabled"})
	}
	if cfg.AsyncBuffer <= 0 {
		errs = append(errs, FieldError{"accesslog.async_buffer", "must be positive"})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{"accesslog.retention_days", "must not be negative"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Logging.Level)})
	}
	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("must be one of json, text, console; got %q", cfg.Logging.Format)})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{"telemetry.tracing.endpoint",
			"must not be empty when tracing is enabled"})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{"telemetry.tracing.sample_ratio",
			fmt.Sprintf("must be between 0.0 and 1.0, got %v", cfg.Tracing.SampleRatio)})
	}

	return errs
}
