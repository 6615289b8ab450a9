package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/aidenappl/retail-core/env"
	"github.com/aidenappl/retail-core/responder"
)

// AuthMiddleware checks the X-Api-Key header
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// If no API key is configured, allow all requests (for development)
		if env.APIKey == "" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get("X-Api-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(env.APIKey)) != 1 {
			responder.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}
