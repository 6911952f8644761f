// Package health provides liveness and readiness probes for the dev proxy.
//
// The Checker aggregates named component checks (content root readable,
// upstream reachable) and runs them concurrently with a per-check timeout.
// Handlers are mounted under the reserved operational prefix.
package health
