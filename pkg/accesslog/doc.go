// Package accesslog journals every request the dev proxy serves to a
// local SQLite database.
//
// Writes happen on a background worker fed by a bounded channel so the
// request path never blocks on disk. The journal keeps enough context to
// answer "where did this byte come from": the resolution source, the
// upstream target URL for proxied requests, and timing.
package accesslog
