package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		if err := Validate(DefaultConfig()); err != nil {
			t.Errorf("Validate(DefaultConfig()) = %v, want nil", err)
		}
	})

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.Server.ListenAddress = "" },
			wantField: "server.listen_address",
		},
		{
			name:      "listen address without port",
			mutate:    func(c *Config) { c.Server.ListenAddress = "localhost" },
			wantField: "server.listen_address",
		},
		{
			name:      "empty content root",
			mutate:    func(c *Config) { c.Content.Root = "" },
			wantField: "content.root",
		},
		{
			name:      "default document without leading slash",
			mutate:    func(c *Config) { c.Content.DefaultDocument = "index.html" },
			wantField: "content.default_document",
		},
		{
			name:      "relative proxy origin",
			mutate:    func(c *Config) { c.Proxy.Origin = "example.com/path" },
			wantField: "proxy.origin",
		},
		{
			name:      "proxy origin with bad scheme",
			mutate:    func(c *Config) { c.Proxy.Origin = "ftp://example.com" },
			wantField: "proxy.origin",
		},
		{
			name:      "proxy origin with trailing slash",
			mutate:    func(c *Config) { c.Proxy.Origin = "https://example.com/" },
			wantField: "proxy.origin",
		},
		{
			name:      "zero proxy timeout",
			mutate:    func(c *Config) { c.Proxy.Timeout = 0 },
			wantField: "proxy.timeout",
		},
		{
			name:      "access log enabled without path",
			mutate:    func(c *Config) { c.AccessLog.Path = "" },
			wantField: "accesslog.path",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Telemetry.Logging.Level = "loud" },
			wantField: "telemetry.logging.level",
		},
		{
			name: "tracing enabled without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Tracing.Enabled = true
				c.Telemetry.Tracing.Endpoint = ""
			},
			wantField: "telemetry.tracing.endpoint",
		},
		{
			name:      "sample ratio out of range",
			mutate:    func(c *Config) { c.Telemetry.Tracing.SampleRatio = 1.5 },
			wantField: "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("Validate() error %q does not mention field %q", err.Error(), tt.wantField)
			}
		})
	}

	t.Run("disabled access log skips its checks", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.AccessLog.Enabled = false
		cfg.AccessLog.Path = ""

		if err := Validate(cfg); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("multiple errors are collected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Server.ListenAddress = ""
		cfg.Content.Root = ""

		err := Validate(cfg)
		if err == nil {
			t.Fatal("Validate() = nil, want error")
		}
		verr, ok := err.(ValidationError)
		if !ok {
			t.Fatalf("error type = %T, want ValidationError", err)
		}
		if len(verr.Errors) != 2 {
			t.Errorf("len(Errors) = %d, want 2", len(verr.Errors))
		}
	})
}
