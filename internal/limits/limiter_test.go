package limits

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{"peer address", "10.0.0.5:51234", "", "10.0.0.5"},
		{"forwarded first hop from loopback proxy", "127.0.0.1:1", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"forwarded from ipv6 loopback", "[::1]:8080", "203.0.113.10", "203.0.113.10"},
		{"forwarded header ignored from remote peer", "198.51.100.7:4000", "203.0.113.9", "198.51.100.7"},
		{"empty forwarded header from loopback", "127.0.0.1:1", " ", "127.0.0.1"},
		{"no port", "pipe", "", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/mcp/message", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientKey(r); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	k := NewKeyedLimiter(2)
	h := k.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/message", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusAccepted || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Unexpected status codes %v", codes)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/sse", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected GET to bypass the limiter, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/mcp/message", nil)
	other.RemoteAddr = "10.1.1.1:9"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected separate bucket per client, got %d", rec.Code)
	}
}

func TestUnlimited(t *testing.T) {
	k := NewKeyedLimiter(0)
	for i := 0; i < 1000; i++ {
		if !k.Allow("a") {
			t.Fatal("Expected unlimited limiter to allow every request")
		}
	}
}

func TestSpoofedForwardedHeaderStillLimited(t *testing.T) {
	k := NewKeyedLimiter(1)
	h := k.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	codes := []int{}
	for _, fwd := range []string{"203.0.113.1", "203.0.113.2"} {
		r := httptest.NewRequest(http.MethodPost, "/mcp/message", nil)
		r.RemoteAddr = "198.51.100.7:4000"
		r.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}
	if codes[1] != http.StatusTooManyRequests {
		t.Errorf("Expected changing X-Forwarded-For not to reset the bucket, got %v", codes)
	}
}

func TestIdleBucketsEvicted(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	k := NewKeyedLimiter(60)
	k.now = func() time.Time { return now }

	k.Allow("a")
	k.Allow("b")
	if k.Len() != 2 {
		t.Fatalf("Expected 2 buckets, got %d", k.Len())
	}

	now = now.Add(IdleTTL / 2)
	k.Allow("b")

	now = now.Add(IdleTTL/2 + time.Second)
	k.Allow("c")
	if k.Len() != 2 {
		t.Errorf("Expected idle bucket to be evicted, got %d buckets", k.Len())
	}
}
