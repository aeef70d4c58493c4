// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestFrom(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Middleware()(simpleOKHandler)

	for i := 0; i < 2; i++ {
		if w := requestFrom(handler, "192.0.2.1"); w.Code != http.StatusOK {
			t.Errorf("request %d: expected status %d, got %d", i, http.StatusOK, w.Code)
		}
	}

	w := requestFrom(handler, "192.0.2.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error, got Content-Type %q", ct)
	}
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Middleware()(simpleOKHandler)

	if w := requestFrom(handler, "192.0.2.1"); w.Code != http.StatusOK {
		t.Fatalf("first IP: got %d", w.Code)
	}
	if w := requestFrom(handler, "192.0.2.1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("first IP second request: got %d", w.Code)
	}
	if w := requestFrom(handler, "192.0.2.2"); w.Code != http.StatusOK {
		t.Errorf("second IP should have its own limit, got %d", w.Code)
	}
}

func TestRateLimiter_ForwardedClient(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Middleware()(simpleOKHandler)

	send := func(fwd string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:80"
		req.Header.Set("X-Forwarded-For", fwd)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := send("198.51.100.1"); code != http.StatusOK {
		t.Fatalf("got %d", code)
	}
	if code := send("198.51.100.1, 10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("same client behind proxy chain should share a limiter, got %d", code)
	}
	if code := send("198.51.100.2"); code != http.StatusOK {
		t.Errorf("other client got %d", code)
	}
}

func TestLimiterCache_ClearIfExceeds(t *testing.T) {
	lc := newLimiterCache[string](1, 1)
	for i := 0; i < 5; i++ {
		lc.get(fmt.Sprintf("client-%d", i))
	}

	if lc.clearIfExceeds(10) {
		t.Error("cache below the limit should not be cleared")
	}
	if !lc.clearIfExceeds(3) {
		t.Error("cache above the limit should be cleared")
	}
	if n := lc.len(); n != 0 {
		t.Errorf("len after clear = %d, want 0", n)
	}
}

func TestLimiterCache_SameKeySameLimiter(t *testing.T) {
	lc := newLimiterCache[int64](1, 1)
	if lc.get(1) != lc.get(1) {
		t.Error("get should return the same limiter for a key")
	}
	if lc.get(1) == lc.get(2) {
		t.Error("different keys should have different limiters")
	}
}
