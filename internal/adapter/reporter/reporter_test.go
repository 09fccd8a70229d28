package reporter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/ingrid-backend/internal/config"
	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *eventRecorder) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) all() []*sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sentry.Event(nil), r.events...)
}

func newRecordingReporter(t *testing.T) (*Reporter, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	r, err := NewWithOptions(sentry.ClientOptions{BeforeSend: rec.beforeSend})
	require.NoError(t, err)
	return r, rec
}

func TestNew_EmptyDSNIsDisabled(t *testing.T) {
	t.Parallel()

	r, err := New(config.SentryConfig{Environment: "test"}, "dev")
	require.NoError(t, err)
	assert.False(t, r.Enabled())

	// Captures on a disabled reporter must not panic or block.
	r.CaptureError(context.Background(), errors.New("boom"), nil)
	r.CaptureMessage(context.Background(), "aggregate", nil)
	r.Flush(10 * time.Millisecond)
}

func TestNew_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := New(config.SentryConfig{DSN: "::not a dsn"}, "dev")
	require.Error(t, err)
}

func TestReporter_CaptureError_TagsAndRequestID(t *testing.T) {
	t.Parallel()

	r, rec := newRecordingReporter(t)
	ctx := ctxutil.WithRequestID(context.Background(), "req-1")

	r.CaptureError(ctx, errors.New("delivery failed"), map[string]string{"component": "scheduler"})

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, "scheduler", events[0].Tags["component"])
	assert.Equal(t, "req-1", events[0].Contexts["request"]["request_id"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "delivery failed", events[0].Exception[len(events[0].Exception)-1].Value)
}

func TestReporter_CaptureError_NilIsIgnored(t *testing.T) {
	t.Parallel()

	r, rec := newRecordingReporter(t)
	r.CaptureError(context.Background(), nil, nil)
	assert.Empty(t, rec.all())
}

func TestReporter_ScopesDoNotLeak(t *testing.T) {
	t.Parallel()

	r, rec := newRecordingReporter(t)
	r.CaptureError(context.Background(), errors.New("first"), map[string]string{"item": "620"})
	r.CaptureMessage(context.Background(), "second", nil)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, "620", events[0].Tags["item"])
	assert.NotContains(t, events[1].Tags, "item")
	assert.Equal(t, sentry.LevelWarning, events[1].Level)
}
