package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func limitedHandler(rl *RateLimiter) http.Handler {
	return rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(h http.Handler, tenantID, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/x", nil)
	req.RemoteAddr = remoteAddr
	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiterKeysByTenant(t *testing.T) {
	// rps 0 means no refill: each bucket has exactly its burst.
	h := limitedHandler(NewRateLimiter(0, 2))

	// Same tenant from two addresses shares one bucket.
	for i := 0; i < 2; i++ {
		if code := doRequest(h, "tenant-a", "10.0.0.1:1111"); code != http.StatusOK {
			t.Fatalf("request %d = %d, want 200", i, code)
		}
	}
	if code := doRequest(h, "tenant-a", "10.0.0.2:2222"); code != http.StatusTooManyRequests {
		t.Errorf("tenant-a over burst = %d, want 429", code)
	}

	// A different tenant has its own bucket.
	if code := doRequest(h, "tenant-b", "10.0.0.1:1111"); code != http.StatusOK {
		t.Errorf("tenant-b first request = %d, want 200", code)
	}
}

func TestRateLimiterFallsBackToAddress(t *testing.T) {
	h := limitedHandler(NewRateLimiter(0, 1))

	if code := doRequest(h, "", "10.0.0.1:1111"); code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", code)
	}
	if code := doRequest(h, "", "10.0.0.1:1111"); code != http.StatusTooManyRequests {
		t.Errorf("second request same address = %d, want 429", code)
	}
	if code := doRequest(h, "", "10.0.0.2:2222"); code != http.StatusOK {
		t.Errorf("other address = %d, want 200", code)
	}
}
