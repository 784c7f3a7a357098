package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wikimirror/wikimirror/internal/metrics"
)

// RequestLogger logs incoming requests and feeds the request histogram.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", elapsed.Milliseconds(),
			)
			metrics.RequestDuration.
				WithLabelValues(handlerLabel(r.URL.Path), strconv.Itoa(sw.status)).
				Observe(elapsed.Seconds())
		})
	}
}

func handlerLabel(path string) string {
	if strings.HasPrefix(path, "/wiki/") {
		return "article"
	}
	return "proxy"
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
