package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"qahub/internal/logging"
)

// withRequestID tags every request with a UUID, echoes it back in the
// X-Request-ID header, and logs method, path, and latency.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Server("%s %s %s (%v)", id, r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
