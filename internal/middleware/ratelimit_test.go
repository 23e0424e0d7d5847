package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitRejectsBursts(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("burst requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 beyond burst, got %d", codes[2])
	}
}

func TestRateLimitIsPerClient(t *testing.T) {
	handler := RateLimit(1, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	firstResp := httptest.NewRecorder()
	handler.ServeHTTP(firstResp, first)

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:1000"
	secondResp := httptest.NewRecorder()
	handler.ServeHTTP(secondResp, second)

	if firstResp.Code != http.StatusOK || secondResp.Code != http.StatusOK {
		t.Fatalf("different clients should not share a bucket: %d, %d", firstResp.Code, secondResp.Code)
	}
}

func TestLimiterPoolEvictsIdleClients(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pool := &limiterPool{rps: 1, burst: 1, now: func() time.Time { return current }}

	pool.get("10.0.0.1")
	pool.get("10.0.0.2")
	if len(pool.m) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(pool.m))
	}

	// keep one client active, let the other idle past the TTL, then sweep
	current = current.Add(limiterIdleTTL - time.Minute)
	pool.get("10.0.0.1")
	current = current.Add(2 * time.Minute)
	pool.get("10.0.0.3")

	if _, ok := pool.m["10.0.0.2"]; ok {
		t.Fatal("idle bucket should have been evicted")
	}
	if len(pool.m) != 2 {
		t.Fatalf("expected 2 buckets after sweep, got %d", len(pool.m))
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin must not be allowed, got %q", got)
	}
}
