package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stagehand-hq/stagehand/pkg/accesslog"
	"stagehand-hq/stagehand/pkg/config"
	"stagehand-hq/stagehand/pkg/forwarder"
	"stagehand-hq/stagehand/pkg/livereload"
	"stagehand-hq/stagehand/pkg/proxy/handlers"
	"stagehand-hq/stagehand/pkg/resolver"
	"stagehand-hq/stagehand/pkg/telemetry/health"
	"stagehand-hq/stagehand/pkg/telemetry/metrics"
	"stagehand-hq/stagehand/pkg/telemetry/tracing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<html>home</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Content.Root = root
	cfg.Proxy.Origin = "http://127.0.0.1:1" // upstream misses fast

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		t.Fatal(err)
	}
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	content := handlers.NewContentHandler(
		&cfg.Content,
		resolver.New(&cfg.Content),
		forwarder.New(&cfg.Proxy),
		collector,
		tracer,
		accesslog.NewRecorder(nil, &config.AccessLogConfig{Enabled: false}),
	)

	checker := health.New(time.Second)
	hub := livereload.NewHub()
	t.Cleanup(hub.Close)

	return NewServer(cfg, content, checker, collector, hub, BuildInfo{
		Version: "test", Commit: "none", BuildTime: "now",
	})
}

func TestRouting(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"content root", "/", http.StatusOK},
		{"local file", "/index.html", http.StatusOK},
		{"content miss", "/missing.html", http.StatusNotFound},
		{"health endpoint", "/__stagehand/health", http.StatusOK},
		{"ready endpoint", "/__stagehand/ready", http.StatusOK},
		{"version endpoint", "/__stagehand/version", http.StatusOK},
		{"metrics endpoint", "/__stagehand/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestOpsEndpointsDoNotShadowContent(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	// A content path that merely resembles the ops prefix must resolve
	// through the content chain, not an ops handler.
	req := httptest.NewRequest(http.MethodGet, "/__stagehands.html", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 from the content chain", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q, want the content 404 page", ct)
	}
}

func TestRequestIDHeaderOnResponses(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestVersionEndpointBody(t *testing.T) {
	s := newTestServer(t)
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/__stagehand/version", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var info health.VersionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode version response: %v", err)
	}
	if info.Version != "test" {
		t.Errorf("version = %q, want test", info.Version)
	}
}

func TestStartAndShutdown(t *testing.T) {
	s := newTestServer(t)
	s.config.Server.ListenAddress = "127.0.0.1:0"
	s.config.Server.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	// Wait for the server to come up, then cancel.
	deadline := time.Now().Add(2 * time.Second)
	for !s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error on graceful shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if s.IsRunning() {
		t.Error("server still reports running after shutdown")
	}
}

func TestStartFailsOnBusyPort(t *testing.T) {
	occupier := httptest.NewServer(http.NotFoundHandler())
	defer occupier.Close()

	s := newTestServer(t)
	s.config.Server.ListenAddress = occupier.Listener.Addr().String()

	err := s.Start(context.Background())
	if err == nil {
		t.Fatal("expected bind error for occupied port")
	}
}
