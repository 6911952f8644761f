// Package forwarder fetches content from the upstream origin when a
// request cannot be served from the local content root.
package forwarder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"stagehand-hq/stagehand/pkg/config"
	"stagehand-hq/stagehand/pkg/contenttype"
)

// Failure reasons attached to upstream errors.
const (
	ReasonNetwork = "network"
	ReasonStatus  = "status"
)

// Result is a successful upstream fetch.
type Result struct {
	// Body is the full upstream response body.
	Body []byte

	// ContentType is the upstream Content-Type header, or a type derived
	// from the request path when the upstream omitted one.
	ContentType string

	// StatusCode is the upstream status code (always 2xx).
	StatusCode int
}

// UpstreamError describes a failed upstream fetch.
type UpstreamError struct {
	// URL is the upstream URL that was attempted.
	URL string

	// Reason is ReasonNetwork for transport failures and ReasonStatus for
	// non-2xx upstream responses.
	Reason string

	// StatusCode is the upstream status code, 0 for transport failures.
	StatusCode int

	// Err is the underlying transport error, nil for status failures.
	Err error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Forwarder fetches request paths from a single upstream origin.
type Forwarder struct {
	origin    string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// New creates a forwarder for the configured origin. The client enforces
// the configured upstream timeout so a stalled origin cannot hold a
// request open indefinitely.
func New(cfg *config.ProxyConfig) *Forwarder {
	return &Forwarder{
		origin:    cfg.Origin,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: slog.Default().With("component", "forwarder"),
	}
}

// Origin returns the configured upstream origin.
func (f *Forwarder) Origin() string {
	return f.origin
}

// TargetURL returns the upstream URL that Forward would fetch for the
// given request path. The path is appended to the origin verbatim so the
// upstream sees exactly what the client asked for.
func (f *Forwarder) TargetURL(requestPath string) string {
	return f.origin + requestPath
}

// Forward fetches the given request path from the upstream origin. It
// returns the body and content type on a 2xx response, or an
// *UpstreamError for anything else.
func (f *Forwarder) Forward(ctx context.Context, requestPath string) (*Result, error) {
	url := f.TargetURL(requestPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{URL: url, Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("upstream fetch failed",
			"url", url,
			"error", err)
		return nil, &UpstreamError{URL: url, Reason: ReasonNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		f.logger.Debug("upstream returned non-success status",
			"url", url,
			"status", resp.StatusCode)
		return nil, &UpstreamError{URL: url, Reason: ReasonStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Warn("upstream body read failed",
			"url", url,
			"error", err)
		return nil, &UpstreamError{URL: url, Reason: ReasonNetwork, Err: err}
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = contenttype.ForPath(requestPath)
	}

	f.logger.Debug("upstream fetch succeeded",
		"url", url,
		"status", resp.StatusCode,
		"bytes", len(body))

	return &Result{
		Body:        body,
		ContentType: ct,
		StatusCode:  resp.StatusCode,
	}, nil
}
