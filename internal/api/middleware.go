package api

import (
	"compress/gzip"
	"context"
	"net/http"
	"strings"
	"time"

	"recipe-extraction-api/internal/logger"
)

// corsMiddleware allows any origin and answers preflight requests itself.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// gzipMiddleware compresses responses when the client supports it
func gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Add("Vary", "Accept-Encoding")

		grw := &gzipResponseWriter{ResponseWriter: w}
		defer func() {
			if grw.writer == nil {
				return
			}
			if err := grw.writer.Close(); err != nil {
				logger.LogError("Error closing gzip writer", "error", err)
			}
		}()

		next.ServeHTTP(grw, r)
	})
}

// gzipResponseWriter wraps http.ResponseWriter to compress responses. The
// encoding is chosen when the headers go out: bodiless statuses and
// handlers that already set Content-Encoding are passed through untouched.
type gzipResponseWriter struct {
	http.ResponseWriter
	writer      *gzip.Writer
	decided     bool
	passthrough bool
}

func (w *gzipResponseWriter) decide(code int) {
	if w.decided {
		return
	}
	w.decided = true
	h := w.Header()
	if code == http.StatusNoContent || code == http.StatusNotModified || h.Get("Content-Encoding") != "" {
		w.passthrough = true
		return
	}
	h.Set("Content-Encoding", "gzip")
	h.Del("Content-Length")
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.decide(code)
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	w.decide(http.StatusOK)
	if w.passthrough {
		return w.ResponseWriter.Write(b)
	}
	if w.writer == nil {
		w.writer = gzip.NewWriter(w.ResponseWriter)
	}
	return w.writer.Write(b)
}

// timeoutMiddleware bounds every request. Handlers see the deadline through
// the request context and stop their fetches when it passes.
func timeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if ctx.Err() == context.DeadlineExceeded {
				logger.LogError("Request timed out", "method", r.Method, "path", r.URL.Path)
			}
		})
	}
}
