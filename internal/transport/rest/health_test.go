package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/ingrid-backend/internal/clock"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func up() pinger { return pingFunc(func(context.Context) error { return nil }) }

func down(msg string) pinger {
	return pingFunc(func(context.Context) error { return errors.New(msg) })
}

var healthStart = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newHealth(db pinger, extra map[string]pinger) (*HealthHandler, *clock.Manual) {
	clk := clock.NewManual(healthStart)
	return NewHealthHandler(db, "v1.4.0", clk, extra), clk
}

func callHealth(t *testing.T, fn http.HandlerFunc, path string) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestHealthHandler_Components(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		db         pinger
		extra      map[string]pinger
		wantCode   int
		wantStatus string
	}{
		{"all up", up(), map[string]pinger{"notifier": up()}, http.StatusOK, "ok"},
		{"database down", down("connection refused"), nil, http.StatusServiceUnavailable, "down"},
		{"extra down", up(), map[string]pinger{"notifier": down("webhook unreachable")}, http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _ := newHealth(tt.db, tt.extra)

			code, resp := callHealth(t, h.Ready, "/ready")
			assert.Equal(t, tt.wantCode, code, "ready")
			assert.Equal(t, tt.wantStatus, resp.Status, "ready")
			assert.Empty(t, resp.Components, "ready carries no detail")

			code, resp = callHealth(t, h.Health, "/health")
			assert.Equal(t, tt.wantCode, code, "health")
			assert.Equal(t, tt.wantStatus, resp.Status, "health")
			assert.Equal(t, "v1.4.0", resp.Version)
			assert.Len(t, resp.Components, 1+len(tt.extra))
		})
	}
}

func TestHealthHandler_LiveIgnoresComponents(t *testing.T) {
	t.Parallel()

	h, _ := newHealth(down("connection refused"), nil)
	code, resp := callHealth(t, h.Live, "/live")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Timestamp.Equal(healthStart))
}

func TestHealthHandler_ComponentDetail(t *testing.T) {
	t.Parallel()

	h, clk := newHealth(up(), map[string]pinger{"notifier": down("webhook unreachable")})
	clk.Advance(90 * time.Second)

	_, resp := callHealth(t, h.Health, "/health")

	db := resp.Components["database"]
	assert.Equal(t, "ok", db.Status)
	assert.NotEmpty(t, db.Latency)
	assert.Empty(t, db.Error)

	notifier := resp.Components["notifier"]
	assert.Equal(t, "down", notifier.Status)
	assert.Equal(t, "webhook unreachable", notifier.Error)

	assert.Equal(t, "1m30s", resp.Uptime)
	assert.True(t, resp.Timestamp.Equal(healthStart.Add(90*time.Second)))
}

func TestHealthHandler_CheckDeadline(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	h, _ := newHealth(pingFunc(func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	}), nil)

	before := time.Now()
	callHealth(t, h.Ready, "/ready")

	require.False(t, deadline.IsZero(), "checks should run under a deadline")
	assert.WithinDuration(t, before.Add(checkTimeout), deadline, time.Second)
}
