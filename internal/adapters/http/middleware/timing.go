package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"meraki/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold used when none is configured.
const DefaultSlowRequest = 500 * time.Millisecond

// RequestIDHeader carries the id that ties a response to its log line.
const RequestIDHeader = "X-Request-ID"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Timing logs every non-static request and records it in collector under the
// matched route pattern. Requests at or above threshold log at WARN.
// POST: the response carries X-Request-ID; a nil collector only logs
func Timing(collector *perf.Collector, threshold time.Duration) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			reqID := uuid.NewString()
			w.Header().Set(RequestIDHeader, reqID)
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				elapsed := time.Since(start)
				ms := float64(elapsed.Microseconds()) / 1000.0
				label := r.Pattern
				if label == "" {
					label = r.Method + " " + r.URL.Path
				}
				attrs := []any{"request_id", reqID, "route", label, "status", sw.status, "duration_ms", ms}
				if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
					attrs = append(attrs, "trace_id", sc.TraceID().String())
				}
				if elapsed >= threshold {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}
				if collector != nil {
					collector.Record(perf.Entry{Kind: perf.KindRequest, Label: label, StatusCode: sw.status, DurationMs: ms, At: start})
				}
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
