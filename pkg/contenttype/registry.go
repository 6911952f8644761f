// Package contenttype maps file extensions to Content-Type header values.
//
// The registry is a fixed table initialized at program start and never
// mutated afterwards, so it is safe for concurrent reads without
// synchronization. Lookups are total: extensions not present in the table
// resolve to the generic binary type rather than an error.
package contenttype

import (
	"path"
	"strings"
)

// Binary is the content type returned for unknown extensions.
const Binary = "application/octet-stream"

// registry maps a lowercase file extension (with leading dot) to its
// content type. Covers the asset types a local site checkout typically
// contains: markup, scripts, styles, data, fonts, images, and media.
var registry = map[string]string{
	".html": "text/html; charset=utf-8",
	".htm":  "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".mjs":  "text/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".map":  "application/json; charset=utf-8",
	".xml":  "application/xml; charset=utf-8",
	".txt":  "text/plain; charset=utf-8",
	".md":   "text/markdown; charset=utf-8",
	".csv":  "text/csv; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".avif": "image/avif",
	".ico":  "image/x-icon",
	".woff": "font/woff",
	".woff2": "font/woff2",
	".ttf":  "font/ttf",
	".otf":  "font/otf",
	".eot":  "application/vnd.ms-fontobject",
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "audio/ogg",
	".pdf":  "application/pdf",
	".wasm": "application/wasm",
	".zip":  "application/zip",
	".gz":   "application/gzip",
}

// Lookup returns the content type for a file extension. The extension may be
// passed with or without its leading dot and is matched case-insensitively.
// Unknown extensions return Binary; there is no error case.
func Lookup(ext string) string {
	if ext == "" {
		return Binary
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ct, ok := registry[strings.ToLower(ext)]; ok {
		return ct
	}
	return Binary
}

// ForPath returns the content type for a request or file path based on its
// extension.
func ForPath(p string) string {
	return Lookup(path.Ext(p))
}
