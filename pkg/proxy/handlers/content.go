package handlers

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stagehand-hq/stagehand/pkg/accesslog"
	"stagehand-hq/stagehand/pkg/config"
	"stagehand-hq/stagehand/pkg/forwarder"
	"stagehand-hq/stagehand/pkg/proxy/middleware"
	"stagehand-hq/stagehand/pkg/resolver"
	"stagehand-hq/stagehand/pkg/telemetry/metrics"
	"stagehand-hq/stagehand/pkg/telemetry/tracing"
)

// notFoundPage is the body served when neither the content root nor the
// upstream can satisfy a request. It names both places that were tried.
const notFoundPage = `<!DOCTYPE html>
<html>
<head><title>404 Not Found</title></head>
<body>
<h1>404 Not Found</h1>
<p>No local file matched <code>%s</code> and the upstream returned nothing for <code>%s</code>.</p>
</body>
</html>
`

// ContentHandler serves site content. Every request walks the same chain:
// try the local content root first, fall back to the upstream origin, and
// answer 404 when both miss. Exactly one of those three outcomes happens
// per request; upstream trouble is reported as a miss, never as a 5xx.
type ContentHandler struct {
	content   *config.ContentConfig
	resolver  *resolver.Resolver
	forwarder *forwarder.Forwarder
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	recorder  *accesslog.Recorder
	logger    *slog.Logger
}

// NewContentHandler creates the content handler.
func NewContentHandler(
	content *config.ContentConfig,
	res *resolver.Resolver,
	fwd *forwarder.Forwarder,
	collector *metrics.Collector,
	tracer *tracing.Tracer,
	recorder *accesslog.Recorder,
) *ContentHandler {
	return &ContentHandler{
		content:   content,
		resolver:  res,
		forwarder: fwd,
		metrics:   collector,
		tracer:    tracer,
		recorder:  recorder,
		logger:    slog.Default().With("component", "content"),
	}
}

// ServeHTTP implements the resolution chain.
func (h *ContentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		middleware.Preflight(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := middleware.GetStartTime(r.Context())
	if start.IsZero() {
		start = time.Now()
	}

	// The bare root maps to the configured default document before any
	// resolution happens, so both the local and upstream attempts see
	// the same rewritten path.
	requested := r.URL.Path
	path := requested
	if path == "/" {
		path = h.content.DefaultDocument
	}

	ctx, span := h.tracer.Start(r.Context(), "content.resolve",
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("content.path", path),
		))
	defer span.End()

	if result, ok := h.resolver.Resolve(path); ok {
		span.SetAttributes(attribute.String("content.source", metrics.SourceLocal))
		tracing.SetStatus(span, nil)
		h.writeLocal(w, r, result)
		h.record(r, start, metrics.SourceLocal, http.StatusOK, result.ContentType, len(result.Content), "")
		return
	}

	target := h.forwarder.TargetURL(path)
	result, err := h.forwarder.Forward(ctx, path)
	if err == nil {
		span.SetAttributes(attribute.String("content.source", metrics.SourceProxy))
		tracing.SetStatus(span, nil)
		h.writeProxied(w, r, result)
		h.record(r, start, metrics.SourceProxy, result.StatusCode, result.ContentType, len(result.Body), target)
		return
	}

	// Both attempts failed. The failure reason feeds metrics, but the
	// client always sees a plain 404.
	reason := forwarder.ReasonNetwork
	var ue *forwarder.UpstreamError
	if errors.As(err, &ue) {
		reason = ue.Reason
	}
	h.metrics.RecordUpstreamFailure(reason)
	span.SetAttributes(attribute.String("content.source", metrics.SourceMiss))
	tracing.SetError(span, err)

	h.writeNotFound(w, r, requested, target)
	h.record(r, start, metrics.SourceMiss, http.StatusNotFound, "text/html", 0, target)
}

// writeLocal serves a file from the content root. Local responses never
// carry CORS headers; the browser is talking to its own origin.
func (h *ContentHandler) writeLocal(w http.ResponseWriter, r *http.Request, result *resolver.FileResult) {
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		_, _ = w.Write(result.Content)
	}
}

// writeProxied relays an upstream response, adding the CORS headers that
// only proxied content carries.
func (h *ContentHandler) writeProxied(w http.ResponseWriter, r *http.Request, result *forwarder.Result) {
	middleware.SetProxyCORSHeaders(w.Header())
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Body)))
	w.WriteHeader(result.StatusCode)

	if r.Method != http.MethodHead {
		_, _ = w.Write(result.Body)
	}
}

// writeNotFound serves the terminal 404 page naming both attempts.
func (h *ContentHandler) writeNotFound(w http.ResponseWriter, r *http.Request, requested, target string) {
	body := fmt.Sprintf(notFoundPage, html.EscapeString(requested), html.EscapeString(target))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusNotFound)

	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte(body))
	}
}

// record updates metrics and the access log journal for a completed
// request.
func (h *ContentHandler) record(r *http.Request, start time.Time, source string, status int, contentType string, bytes int, target string) {
	duration := time.Since(start)

	h.metrics.RecordRequest(r.Method, source, status, duration, bytes)

	h.recorder.Record(&accesslog.Record{
		RequestID:   middleware.GetRequestID(r.Context()),
		Method:      r.Method,
		Path:        r.URL.Path,
		Source:      source,
		Status:      status,
		ContentType: contentType,
		Bytes:       bytes,
		Duration:    duration,
		Target:      target,
	})

	h.logger.Debug("request resolved",
		"path", r.URL.Path,
		"source", source,
		"status", status,
		"bytes", bytes,
		"duration_ms", duration.Milliseconds(),
	)
}
