package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"catalog-system/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// statusRecorder remembers the status code and whether anything was written.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.written {
		return
	}
	r.status = code
	r.written = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

type LoggingMiddleware struct {
	log *logrus.Logger
}

func NewLoggingMiddleware(log *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{log: log}
}

// Handle logs one entry per request and turns a panic into a single opaque
// 500 response.
func (m *LoggingMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		entry := m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		defer func() {
			if p := recover(); p != nil {
				entry.WithField("panic", p).Errorf("Recovered from panic: %s", debug.Stack())
				if !rec.written {
					response.InternalServerError(rec, "")
				}
			}

			entry.WithFields(logrus.Fields{
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("Request handled")
		}()

		next.ServeHTTP(rec, r)
	})
}
