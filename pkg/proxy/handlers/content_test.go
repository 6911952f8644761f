package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"stagehand-hq/stagehand/pkg/accesslog"
	"stagehand-hq/stagehand/pkg/config"
	"stagehand-hq/stagehand/pkg/forwarder"
	"stagehand-hq/stagehand/pkg/resolver"
	"stagehand-hq/stagehand/pkg/telemetry/metrics"
	"stagehand-hq/stagehand/pkg/telemetry/tracing"
)

// newTestHandler builds a content handler over a temp content root and
// the given upstream origin URL.
func newTestHandler(t *testing.T, origin string, files map[string]string) *ContentHandler {
	t.Helper()

	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	content := &config.ContentConfig{Root: root, DefaultDocument: "/index.html"}
	tracer, err := tracing.New(&config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatal(err)
	}

	return NewContentHandler(
		content,
		resolver.New(content),
		forwarder.New(&config.ProxyConfig{
			Origin:    origin,
			Timeout:   2 * time.Second,
			UserAgent: "stagehand-test",
		}),
		metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "stagehand"}, prometheus.NewRegistry()),
		tracer,
		accesslog.NewRecorder(nil, &config.AccessLogConfig{Enabled: false}),
	)
}

func newTestUpstream(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestLocalFileWins(t *testing.T) {
	upstream := newTestUpstream(t, map[string]string{
		"/index.html": "<html>remote</html>",
	})
	h := newTestHandler(t, upstream.URL, map[string]string{
		"index.html": "<html>local</html>",
	})

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "<html>local</html>" {
		t.Errorf("body = %q, local file must win over upstream", w.Body.String())
	}
	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q, want text/html; charset=utf-8", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
	// Local responses must not carry CORS headers.
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("local response carries CORS header %q", got)
	}
}

func TestRootServesDefaultDocument(t *testing.T) {
	upstream := newTestUpstream(t, nil)
	h := newTestHandler(t, upstream.URL, map[string]string{
		"index.html": "<html>home</html>",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "<html>home</html>" {
		t.Errorf("body = %q, want the default document", w.Body.String())
	}
}

func TestRootRewriteAppliesToProxyToo(t *testing.T) {
	var upstreamPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>remote home</html>"))
	}))
	defer upstream.Close()

	h := newTestHandler(t, upstream.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if upstreamPath != "/index.html" {
		t.Errorf("upstream saw %q, want the rewritten /index.html", upstreamPath)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestProxyFallback(t *testing.T) {
	upstream := newTestUpstream(t, map[string]string{
		"/styles/app.css": "body { margin: 0 }",
	})
	h := newTestHandler(t, upstream.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/styles/app.css", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "body { margin: 0 }" {
		t.Errorf("body = %q", w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
	// Proxied responses carry the full CORS header set.
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
}

func TestDirectoryFallsThroughToProxy(t *testing.T) {
	upstream := newTestUpstream(t, map[string]string{
		"/docs": "<html>remote docs</html>",
	})
	// "docs" exists locally but as a directory, which cannot be served.
	h := newTestHandler(t, upstream.URL, map[string]string{
		"docs/readme.html": "<html>nested</html>",
	})

	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "<html>remote docs</html>" {
		t.Errorf("body = %q, directory should fall through to upstream", w.Body.String())
	}
}

func TestMissReturns404Page(t *testing.T) {
	upstream := newTestUpstream(t, nil)
	h := newTestHandler(t, upstream.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/missing/page.html", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "/missing/page.html") {
		t.Errorf("404 page does not name the requested path:\n%s", body)
	}
	if !strings.Contains(body, upstream.URL+"/missing/page.html") {
		t.Errorf("404 page does not name the attempted upstream URL:\n%s", body)
	}
}

func TestUpstreamDownIs404Not5xx(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // guarantee connection failure

	h := newTestHandler(t, upstream.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/page.html", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, upstream failure must surface as 404", w.Code)
	}
}

func TestNotFoundPageEscapesPath(t *testing.T) {
	upstream := newTestUpstream(t, nil)
	h := newTestHandler(t, upstream.URL, nil)

	req := httptest.NewRequest(http.MethodGet, "/%3Cscript%3Ealert(1)%3C/script%3E", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if strings.Contains(w.Body.String(), "<script>") {
		t.Error("404 page reflects unescaped markup")
	}
}

func TestHeadRequest(t *testing.T) {
	upstream := newTestUpstream(t, nil)
	h := newTestHandler(t, upstream.URL, map[string]string{
		"index.html": "<html>home</html>",
	})

	req := httptest.NewRequest(http.MethodHead, "/index.html", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("HEAD response has body of %d bytes", w.Body.Len())
	}
	if got := w.Header().Get("Content-Length"); got != "17" {
		t.Errorf("Content-Length = %q, want 17", got)
	}
}

func TestMethodHandling(t *testing.T) {
	upstream := newTestUpstream(t, nil)
	h := newTestHandler(t, upstream.URL, nil)

	t.Run("post is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/index.html", strings.NewReader("data"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", w.Code)
		}
		if got := w.Header().Get("Allow"); got != "GET, HEAD, OPTIONS" {
			t.Errorf("Allow = %q", got)
		}
	})

	t.Run("options preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/index.html", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("preflight Access-Control-Allow-Origin = %q", got)
		}
	})
}

func TestConcurrentRequests(t *testing.T) {
	upstream := newTestUpstream(t, map[string]string{
		"/remote.html": "<html>remote</html>",
	})
	h := newTestHandler(t, upstream.URL, map[string]string{
		"local.html": "<html>local</html>",
	})

	paths := []struct {
		path       string
		wantStatus int
	}{
		{"/local.html", http.StatusOK},
		{"/remote.html", http.StatusOK},
		{"/missing.html", http.StatusNotFound},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 60)
	for i := 0; i < 20; i++ {
		for _, p := range paths {
			wg.Add(1)
			go func(path string, want int) {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodGet, path, nil)
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				if w.Code != want {
					errs <- fmt.Errorf("%s: status %d, want %d", path, w.Code, want)
				}
			}(p.path, p.wantStatus)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
