package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"stagehand-hq/stagehand/pkg/config"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"index.html":     "<html>home</html>",
		"styles/app.css": "body { margin: 0 }",
		"scripts/app.js": "console.log('hi')",
		"data.json":      `{"ok":true}`,
	}
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return New(&config.ContentConfig{Root: root, DefaultDocument: "/index.html"})
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t)

	tests := []struct {
		name     string
		path     string
		wantHit  bool
		wantBody string
		wantType string
	}{
		{"html file", "/index.html", true, "<html>home</html>", "text/html; charset=utf-8"},
		{"nested css", "/styles/app.css", true, "body { margin: 0 }", "text/css; charset=utf-8"},
		{"json file", "/data.json", true, `{"ok":true}`, "application/json; charset=utf-8"},
		{"missing file", "/missing.html", false, "", ""},
		{"directory", "/styles", false, "", ""},
		{"path without leading slash", "index.html", true, "<html>home</html>", "text/html; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := r.Resolve(tt.path)
			if ok != tt.wantHit {
				t.Fatalf("Resolve(%q) hit = %v, want %v", tt.path, ok, tt.wantHit)
			}
			if !ok {
				return
			}
			if string(result.Content) != tt.wantBody {
				t.Errorf("content = %q, want %q", result.Content, tt.wantBody)
			}
			if result.ContentType != tt.wantType {
				t.Errorf("content type = %q, want %q", result.ContentType, tt.wantType)
			}
		})
	}
}

func TestResolveBlocksTraversal(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "site")
	if err := os.MkdirAll(content, 0o755); err != nil {
		t.Fatal(err)
	}
	// A file outside the content root that must stay unreachable.
	if err := os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(&config.ContentConfig{Root: content})

	for _, path := range []string{
		"/../secret.txt",
		"/../../secret.txt",
		"/a/../../secret.txt",
	} {
		if result, ok := r.Resolve(path); ok {
			t.Errorf("Resolve(%q) escaped the content root: %s", path, result.Path)
		}
	}
}

func TestResolveUnknownExtensionIsBinary(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "blob.xyz123"), []byte{0x01, 0x02}, 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(&config.ContentConfig{Root: root})

	result, ok := r.Resolve("/blob.xyz123")
	if !ok {
		t.Fatal("expected hit for existing file")
	}
	if result.ContentType != "application/octet-stream" {
		t.Errorf("content type = %q, want application/octet-stream", result.ContentType)
	}
}
