// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/scms-go/internal/model"
)

func TestLimiterCacheReturnsSameLimiter(t *testing.T) {
	lc := newLimiterCache[string](1, 1)

	a := lc.get("key")
	b := lc.get("key")
	if a != b {
		t.Error("expected the same limiter for the same key")
	}
	if a == lc.get("other") {
		t.Error("expected a different limiter for a different key")
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[int](1, 1)
	for i := 0; i < 5; i++ {
		lc.get(i)
	}

	if lc.clearIfExceeds(10) {
		t.Error("cache below the limit must not be cleared")
	}
	if !lc.clearIfExceeds(3) {
		t.Error("cache above the limit must be cleared")
	}
	if len(lc.limiters) != 0 {
		t.Errorf("expected empty cache after clear, got %d entries", len(lc.limiters))
	}
}

func TestUserRateLimitBurst(t *testing.T) {
	handler := UserRateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := requestWithUser(model.User{ID: 42, Role: model.RoleMember})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected first two requests within burst, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %d", codes[2])
	}
}

func TestUserRateLimitIgnoresAnonymous(t *testing.T) {
	handler := UserRateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("anonymous request %d: expected pass-through, got %d", i, rec.Code)
		}
	}
}

func TestIPRateLimiterSeparatesClients(t *testing.T) {
	rl := NewIPRateLimiter(1, 1)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first client: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("first client over budget: expected 429, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Errorf("second client has its own budget: expected 200, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"remote addr only", "203.0.113.7:4567", "", "203.0.113.7"},
		{"single forwarded hop", "10.0.0.1:80", "198.51.100.4", "198.51.100.4"},
		{"first of multiple hops", "10.0.0.1:80", "198.51.100.4, 10.0.0.2, 10.0.0.3", "198.51.100.4"},
		{"no port", "203.0.113.7", "", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
