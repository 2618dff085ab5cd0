package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/2beens/lumberjacked/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PanicRecovery turns a handler panic into a 500, unless the handler already started the response.
// http.ErrAbortHandler is passed on to net/http untouched.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			resp := &headerTrackingWriter{ResponseWriter: respWriter}
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}

				log.WithFields(log.Fields{
					"request_id": respWriter.Header().Get(RequestIDHeader),
					"method":     req.Method,
					"path":       req.URL.Path,
				}).Errorf("http: panic serving request: %v\n%s", r, debug.Stack())

				span := trace.SpanFromContext(req.Context())
				span.RecordError(fmt.Errorf("panic: %v", r))
				span.SetStatus(codes.Error, "panic")

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				if !resp.wroteHeader {
					http.Error(respWriter, "internal server error", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(resp, req)
		})
	}
}

type headerTrackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *headerTrackingWriter) WriteHeader(statusCode int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *headerTrackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
