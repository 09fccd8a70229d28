package middleware

import (
	"encoding/json"
	"net/http"
)

// Middleware wraps an http.Handler. Values plug directly into chi's Use.
type Middleware func(http.Handler) http.Handler

// writeError writes the same JSON error body as the REST handlers.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
