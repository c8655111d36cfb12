package middleware

import (
	"mime"
	"net/http"
)

// DefaultMaxBodyBytes is the default maximum JSON request body size (1 MiB).
const DefaultMaxBodyBytes = 1 << 20

// JSONBody guards routes that take a JSON document. Bodies larger than maxBytes
// fail with 413 when read, and a non-empty body must be sent as application/json
// or the request is refused with 415. Empty bodies pass through untouched.
func JSONBody(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
				writeJSONError(w, "content type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
