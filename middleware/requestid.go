package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/aidenappl/retail-core/responder"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware reuses the caller's X-Request-ID or generates one,
// echoes it and stores it in the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), responder.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
