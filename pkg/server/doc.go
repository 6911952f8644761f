// Package server wires the content handler, operational endpoints, and
// middleware chain into a single HTTP server with graceful shutdown.
package server
