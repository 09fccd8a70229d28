package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

// Logger writes one "http.request" line per request. Server errors log at
// error level and rejected requests (4xx) at warn.
func Logger(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			// Auth runs inside this middleware; it reports the client back
			// through the writer.
			next.ServeHTTP(sw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Int("bytes", sw.written),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
			}
			if sw.client != "" {
				attrs = append(attrs, slog.String("client", sw.client))
			}

			logger.LogAttrs(r.Context(), levelFor(sw.status), "http.request", attrs...)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// statusWriter records what the handler sent and who it was sent to.
type statusWriter struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
	client      string
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

type clientRecorder interface {
	setClient(subject string)
}

func (w *statusWriter) setClient(subject string) { w.client = subject }

// recordClient tells an enclosing Logger which client made the request.
func recordClient(w http.ResponseWriter, subject string) {
	if rec, ok := w.(clientRecorder); ok {
		rec.setClient(subject)
	}
}
