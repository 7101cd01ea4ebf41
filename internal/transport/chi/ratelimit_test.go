package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func limitedHandler(rl *RateLimiter) http.Handler {
	return rl.Middleware()(okHandler())
}

func requestFrom(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/search", http.NoBody)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	h := limitedHandler(NewRateLimiter(10, 10))

	for i := range 10 {
		if rr := requestFrom(h, "192.0.2.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want %d", i, rr.Code, http.StatusOK)
		}
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	h := limitedHandler(NewRateLimiter(1, 1))

	if rr := requestFrom(h, "192.0.2.1:1234"); rr.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rr.Code)
	}
	rr := requestFrom(h, "192.0.2.1:5678")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if ra := rr.Header().Get("Retry-After"); ra != "1" {
		t.Errorf("Retry-After = %q, want 1", ra)
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	h := limitedHandler(NewRateLimiter(1, 1))

	if rr := requestFrom(h, "192.0.2.1:1234"); rr.Code != http.StatusOK {
		t.Fatalf("client A: got %d", rr.Code)
	}
	if rr := requestFrom(h, "192.0.2.2:1234"); rr.Code != http.StatusOK {
		t.Errorf("client B: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRateLimiter_SlowRateRetryAfter(t *testing.T) {
	h := limitedHandler(NewRateLimiter(0.1, 1))

	requestFrom(h, "192.0.2.1:1")
	rr := requestFrom(h, "192.0.2.1:1")
	if ra := rr.Header().Get("Retry-After"); ra != "10" {
		t.Errorf("Retry-After = %q, want 10", ra)
	}
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.limiterFor("192.0.2.1", now.Add(-10*time.Minute))
	rl.limiterFor("192.0.2.2", now)

	rl.evict(now)

	if _, ok := rl.limiters["192.0.2.1"]; ok {
		t.Error("idle client not evicted")
	}
	if _, ok := rl.limiters["192.0.2.2"]; !ok {
		t.Error("active client evicted")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = tt.remote
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
