// Package responder writes JSON bodies, errors and cache headers.
package responder

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Cache-Control values per endpoint family
const (
	CacheShort   = "public, s-maxage=300, stale-while-revalidate=600"
	CacheOptions = "public, s-maxage=1800, stale-while-revalidate=3600"
	CacheNone    = "no-store"
)

type errorBody struct {
	Error string `json:"error"`
}

// New writes v as a 200 JSON response
func New(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Raw writes an already encoded JSON body. hit sets X-Cache and
// cacheControl, when not empty, sets Cache-Control.
func Raw(w http.ResponseWriter, body []byte, hit bool, cacheControl string) {
	w.Header().Set("Content-Type", "application/json")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Error writes {"error": msg} with status
func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", CacheNone)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: msg})
}

// ErrorWithCause logs err with the request id and writes msg. The cause
// never reaches the client.
func ErrorWithCause(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	log.Error().
		Err(err).
		Str("request_id", RequestID(r)).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg(msg)
	Error(w, status, msg)
}

type requestIDKey struct{}

// RequestIDKey is the context key the request id middleware stores under.
var RequestIDKey = requestIDKey{}

// RequestID returns the id attached to r, or "".
func RequestID(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
