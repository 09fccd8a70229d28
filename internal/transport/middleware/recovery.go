package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
)

type panicReporter interface {
	Recover(ctx context.Context, recovered any)
}

// Recovery returns middleware that recovers from panics, logs the error
// with a stack trace, reports it, and responds with 500 Internal Server
// Error. reporter may be nil.
func Recovery(logger *slog.Logger, reporter panicReporter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					stack := debug.Stack()
					logger.ErrorContext(r.Context(), "panic recovered",
						slog.Any("error", err),
						slog.String("stack", string(stack)),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					if reporter != nil {
						reporter.Recover(r.Context(), err)
					}
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
