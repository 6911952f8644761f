// Package resolver serves files from the local content root.
//
// Resolution is deliberately forgiving: anything that prevents a local file
// from being served (missing file, directory, permission error) is reported
// as a miss so the caller can fall through to the upstream origin.
package resolver

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stagehand-hq/stagehand/pkg/config"
	"stagehand-hq/stagehand/pkg/contenttype"
)

// FileResult is a file successfully read from the content root.
type FileResult struct {
	// Path is the absolute filesystem path the content was read from.
	Path string

	// Content is the full file body.
	Content []byte

	// ContentType is the media type derived from the file extension.
	ContentType string
}

// Resolver reads request paths out of a local content root.
type Resolver struct {
	root   string
	logger *slog.Logger
}

// New creates a resolver rooted at the configured content directory.
func New(cfg *config.ContentConfig) *Resolver {
	return &Resolver{
		root:   cfg.Root,
		logger: slog.Default().With("component", "resolver"),
	}
}

// Root returns the content root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve attempts to read the file for the given request path. It returns
// the file and true on success, or nil and false when the path cannot be
// served locally for any reason.
func (r *Resolver) Resolve(requestPath string) (*FileResult, bool) {
	// Collapse any ".." segments against a rooted path so a crafted request
	// can never escape the content root.
	clean := filepath.Clean("/" + strings.TrimPrefix(requestPath, "/"))
	full := filepath.Join(r.root, filepath.FromSlash(clean))

	info, err := os.Stat(full)
	if err != nil {
		return nil, false
	}
	if info.IsDir() {
		r.logger.Debug("local path is a directory, treating as miss", "path", full)
		return nil, false
	}

	content, err := os.ReadFile(full)
	if err != nil {
		r.logger.Warn("local file unreadable, treating as miss",
			"path", full,
			"error", err)
		return nil, false
	}

	r.logger.Debug("resolved local file",
		"path", full,
		"bytes", len(content))

	return &FileResult{
		Path:        full,
		Content:     content,
		ContentType: contenttype.ForPath(clean),
	}, true
}
