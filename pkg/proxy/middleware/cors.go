package middleware

import "net/http"

// CORS header values sent on proxied responses. Local files are served
// same-origin by the browser and deliberately carry no CORS headers, so
// the headers are set per-response by the content handler rather than by
// a blanket middleware.
const (
	AllowOriginValue  = "*"
	AllowMethodsValue = "GET, POST, PUT, DELETE, OPTIONS"
	AllowHeadersValue = "Content-Type, Authorization"
)

// SetProxyCORSHeaders sets the CORS headers used for content fetched from
// the upstream origin.
func SetProxyCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOriginValue)
	h.Set("Access-Control-Allow-Methods", AllowMethodsValue)
	h.Set("Access-Control-Allow-Headers", AllowHeadersValue)
}

// Preflight answers a CORS preflight request with 204 No Content and the
// same header set proxied responses carry.
func Preflight(w http.ResponseWriter, r *http.Request) {
	SetProxyCORSHeaders(w.Header())
	w.WriteHeader(http.StatusNoContent)
}
