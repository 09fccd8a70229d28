package middleware

import (
	"net/http"
	"strings"

	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

type tokenValidator interface {
	ValidateToken(token string) (subject, role string, err error)
}

// Auth requires a valid bearer token and stores the client subject and
// role in the request context.
func Auth(validator tokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ingrid"`)
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			subject, role, err := validator.ValidateToken(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="ingrid", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			recordClient(w, subject)
			ctx := ctxutil.WithSubject(r.Context(), subject)
			ctx = ctxutil.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
