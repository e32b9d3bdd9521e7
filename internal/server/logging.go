package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// logFieldsKey identifies request-scoped logging fields.
type logFieldsKey struct{}

// logFields is the mutable set of fields handlers attach to a request log.
type logFields struct {
	mu     sync.Mutex
	values map[string]string
}

// LoggingMiddleware logs HTTP requests with structured logging.
// The start of a request is logged at debug level. The completion is logged
// at info, warn for 4xx or error for 5xx responses, including method, path,
// status code, duration and any fields added via AddLogField.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			fields := &logFields{values: make(map[string]string)}
			ctx := context.WithValue(r.Context(), logFieldsKey{}, fields)

			wrapped := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			requestID := GetRequestID(r.Context())

			logger.DebugContext(ctx, "request started",
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
			)

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
			}
			fields.mu.Lock()
			for k, v := range fields.values {
				attrs = append(attrs, slog.String(k, v))
			}
			fields.mu.Unlock()

			logger.LogAttrs(ctx, levelForStatus(wrapped.statusCode), "request completed", attrs...)
		})
	}
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// loggingResponseWriter wraps http.ResponseWriter to capture status code.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *loggingResponseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *loggingResponseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// AddLogField attaches a key/value to the request-scoped log fields so
// LoggingMiddleware can emit it. It is safe to call multiple times. No-op if
// the middleware isn't present or value is empty.
func AddLogField(ctx context.Context, key, value string) {
	if value == "" {
		return
	}
	if fields, ok := ctx.Value(logFieldsKey{}).(*logFields); ok {
		fields.mu.Lock()
		fields.values[key] = value
		fields.mu.Unlock()
	}
}

// AddError attaches an error message to the request-scoped log fields so it
// appears in the request log. No-op if the middleware isn't present or err is
// nil.
func AddError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	AddLogField(ctx, "error", err.Error())
}
