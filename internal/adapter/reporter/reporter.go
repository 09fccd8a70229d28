// Package reporter forwards operator-facing errors to Sentry.
package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

// Reporter captures errors on its own hub. With an empty DSN the client
// has no transport and every capture is dropped.
type Reporter struct {
	hub     *sentry.Hub
	enabled bool
}

// New creates a Reporter from config. release is attached to every event.
func New(cfg config.SentryConfig, release string) (*Reporter, error) {
	return NewWithOptions(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     release,
	})
}

// NewWithOptions creates a Reporter from raw client options.
func NewWithOptions(opts sentry.ClientOptions) (*Reporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("reporter: init sentry: %w", err)
	}
	return &Reporter{
		hub:     sentry.NewHub(client, sentry.NewScope()),
		enabled: opts.Dsn != "",
	}, nil
}

// Enabled reports whether events leave the process.
func (r *Reporter) Enabled() bool { return r.enabled }

// CaptureError reports err with the given tags.
func (r *Reporter) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetContext("request", requestContext(ctx))
		r.hub.CaptureException(err)
	})
}

// CaptureMessage reports an aggregate condition that is not a single error.
func (r *Reporter) CaptureMessage(ctx context.Context, msg string, tags map[string]string) {
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTags(tags)
		scope.SetContext("request", requestContext(ctx))
		r.hub.CaptureMessage(msg)
	})
}

// Recover reports a recovered panic value.
func (r *Reporter) Recover(ctx context.Context, recovered any) {
	if recovered == nil {
		return
	}
	r.hub.RecoverWithContext(ctx, recovered)
}

// Flush waits for buffered events to be sent.
func (r *Reporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

func requestContext(ctx context.Context) sentry.Context {
	c := sentry.Context{}
	if ctx == nil {
		return c
	}
	if id := ctxutil.RequestIDFromCtx(ctx); id != "" {
		c["request_id"] = id
	}
	if subject, ok := ctxutil.SubjectFromCtx(ctx); ok {
		c["client"] = subject
	}
	return c
}
