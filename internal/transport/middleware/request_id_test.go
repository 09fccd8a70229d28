package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

func serveWithRequestID(t *testing.T, incoming string) (ctxID, headerID string) {
	t.Helper()

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = ctxutil.RequestIDFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(RequestIDHeader, incoming)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return ctxID, rec.Header().Get(RequestIDHeader)
}

func TestRequestID_ReuseIncoming(t *testing.T) {
	ctxID, headerID := serveWithRequestID(t, "bot-7f3a")

	if ctxID != "bot-7f3a" {
		t.Errorf("expected context id bot-7f3a, got %q", ctxID)
	}
	if headerID != "bot-7f3a" {
		t.Errorf("expected echoed header bot-7f3a, got %q", headerID)
	}
}

func TestRequestID_Generated(t *testing.T) {
	cases := map[string]string{
		"missing":   "",
		"oversized": strings.Repeat("x", maxRequestIDLen+1),
	}
	for name, incoming := range cases {
		t.Run(name, func(t *testing.T) {
			ctxID, headerID := serveWithRequestID(t, incoming)

			if _, err := uuid.Parse(ctxID); err != nil {
				t.Errorf("expected a generated UUID, got %q: %v", ctxID, err)
			}
			if headerID != ctxID {
				t.Errorf("header %q should match context id %q", headerID, ctxID)
			}
		})
	}
}
