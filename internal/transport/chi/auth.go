package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// If tokens is empty, authentication is disabled (pass-through).
func BearerAuthMiddleware(tokens []string) func(http.Handler) http.Handler {
	valid := make([][]byte, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			valid = append(valid, []byte(t))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			if !tokenAllowed(valid, []byte(auth[len(bearerPrefix):])) {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func tokenAllowed(valid [][]byte, token []byte) bool {
	for _, v := range valid {
		if subtle.ConstantTimeCompare(v, token) == 1 {
			return true
		}
	}
	return false
}
