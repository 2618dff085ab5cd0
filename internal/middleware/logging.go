package middleware

import (
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	log "github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-Id"

// LogRequest tags each request with an id (kept when the client sent one) and logs it once served.
func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				if id, err := uuid.NewV4(); err == nil {
					requestID = id.String()
				}
			}
			w.Header().Set(RequestIDHeader, requestID)

			begin := time.Now()
			resp := &responseWriter{w, http.StatusOK}
			next.ServeHTTP(resp, r)

			log.WithFields(log.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     resp.statusCode,
				"duration":   time.Since(begin).String(),
				"user_agent": r.Header.Get("User-Agent"),
			}).Debug("request served")
		})
	}
}
