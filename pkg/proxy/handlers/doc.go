// Package handlers contains the HTTP handlers for site content.
//
// The content handler owns the local-first resolution chain: local file,
// then upstream origin, then 404. Operational endpoints (health, metrics,
// reload) live under a reserved prefix and are mounted by the server, not
// here, so they can never shadow site content.
package handlers
