// Package middleware provides HTTP middleware for the dev proxy server:
// request ID generation, structured request logging, panic recovery, and
// the CORS headers applied to proxied responses.
//
// Middleware composes in the standard wrapping order:
//
//	handler = RecoveryMiddleware(LoggingMiddleware(RequestIDMiddleware(handler)))
package middleware
