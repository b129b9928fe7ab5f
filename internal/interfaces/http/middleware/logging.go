package middleware

import (
	"net/http"
	"time"

	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/prometheus"
)

// wrappedResponseWriter captures the status code and bytes written.
type wrappedResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func newWrappedResponseWriter(w http.ResponseWriter) *wrappedResponseWriter {
	return &wrappedResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *wrappedResponseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *wrappedResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += int64(n)
	return n, err
}

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// SkipPaths are high-frequency paths that should not be logged.
	SkipPaths []string

	// SlowThreshold is the duration above which a request is logged at Warn.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig returns the standard logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipPaths:     []string{"/healthz", "/readyz", "/metrics"},
		SlowThreshold: 3 * time.Second,
	}
}

// RequestLogging logs every request with method, path, status, and duration,
// and records the request in the metrics registry.  metrics may be nil.
func RequestLogging(logger logging.Logger, metrics *prometheus.Metrics, config LoggingConfig) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipSet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := newWrappedResponseWriter(w)

			if metrics != nil {
				metrics.HTTPActiveRequests.Inc()
			}
			next.ServeHTTP(wrapped, r)
			if metrics != nil {
				metrics.HTTPActiveRequests.Dec()
			}

			duration := time.Since(start)
			if metrics != nil {
				metrics.ObserveHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, duration)
			}

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", wrapped.statusCode),
				logging.Duration("duration", duration),
				logging.Int64("bytes", wrapped.bytesWritten),
				logging.String("remote_addr", r.RemoteAddr),
			}
			if reqID := r.Header.Get("X-Request-ID"); reqID != "" {
				fields = append(fields, logging.String("request_id", reqID))
			}
			if sess := ContextSession(r.Context()); sess != nil {
				fields = append(fields, logging.String("username", sess.Username))
			}

			switch {
			case wrapped.statusCode >= 500:
				logger.Error("request completed with server error", fields...)
			case wrapped.statusCode >= 400:
				logger.Warn("request completed with client error", fields...)
			case config.SlowThreshold > 0 && duration >= config.SlowThreshold:
				logger.Warn("slow request", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		})
	}
}
