package gateway

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// requireAuth wraps h with bearer-token auth when a token is configured.
// An empty configured token disables auth entirely.
// Uses constant-time comparison to prevent timing attacks.
func (s *Server) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	if s.cfg.AuthToken == "" {
		return h
	}
	want := []byte(s.cfg.AuthToken)
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, prefix) ||
			subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), want) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h(w, r)
	}
}
