package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aidenappl/retail-core/env"
	"github.com/aidenappl/retail-core/responder"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware(t *testing.T) {
	prev := env.APIKey
	env.APIKey = "secret"
	defer func() { env.APIKey = prev }()

	h := AuthMiddleware(okHandler)

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
			if tt.key != "" {
				req.Header.Set("X-Api-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	prev := env.APIKey
	env.APIKey = ""
	defer func() { env.APIKey = prev }()

	rec := httptest.NewRecorder()
	AuthMiddleware(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 without a configured key, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = responder.RequestID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("expected a generated request id")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("header %q does not match context id %q", rec.Header().Get("X-Request-ID"), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" {
		t.Errorf("expected caller id to be kept, got %q", seen)
	}
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status to pass through, got %d", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	h := NewRateLimiter(1, 2, false).Middleware(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}

	// other clients have their own bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected a fresh bucket for another client, got %d", rec.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	h := NewRateLimiter(0, 0, false).Middleware(okHandler)
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d limited with rate 0", i)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("X-Real-IP", "203.0.113.9")

	if got := clientIP(req, false); got != "192.168.1.5" {
		t.Errorf("forwarding headers must be ignored without a trusted proxy, got %q", got)
	}
	if got := clientIP(req, true); got != "203.0.113.7" {
		t.Errorf("expected first forwarded address, got %q", got)
	}

	req.Header.Del("X-Forwarded-For")
	if got := clientIP(req, true); got != "203.0.113.9" {
		t.Errorf("expected X-Real-IP, got %q", got)
	}
}

func TestRateLimiter_RotatingForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)
	h := rl.Middleware(okHandler)

	allowed := 0
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	if allowed != 1 {
		t.Errorf("expected 1 allowed request, got %d", allowed)
	}
	if rl.Len() != 1 {
		t.Errorf("expected one tracked client, got %d", rl.Len())
	}
}

func TestRateLimiter_IdleClientsExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 10, false)
	rl.now = func() time.Time { return now }

	for i := 0; i < 500; i++ {
		rl.getLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	if rl.Len() != 500 {
		t.Fatalf("expected 500 tracked clients, got %d", rl.Len())
	}

	// one client stays active
	now = now.Add(30 * time.Second)
	rl.getLimiter("10.0.0.0")

	now = now.Add(31 * time.Second)
	rl.getLimiter("10.9.9.9")

	if rl.Len() != 2 {
		t.Errorf("expected idle clients to be dropped, %d still tracked", rl.Len())
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
