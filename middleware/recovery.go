package middleware

import (
	"fmt"
	"net/http"

	"github.com/aidenappl/retail-core/responder"
)

// RecoveryMiddleware turns a handler panic into a 500
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				responder.ErrorWithCause(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", v))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
