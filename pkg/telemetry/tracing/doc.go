// Package tracing provides OpenTelemetry tracing for the dev proxy.
//
// Spans are exported over OTLP gRPC when tracing is enabled; otherwise a
// noop tracer is used so instrumented call sites stay unconditional.
package tracing
