package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRateLimiterEnforcesConfiguredBudget(t *testing.T) {
	rl := newRateLimiter(3)
	defer rl.stop()

	metrics := &securityMetrics{}
	for i := 0; i < 3; i++ {
		if !rl.allowRequest(http.MethodPost, "10.0.0.1", metrics) {
			t.Fatalf("mutation %d should be allowed", i+1)
		}
	}
	if rl.allowRequest(http.MethodPost, "10.0.0.1", metrics) {
		t.Error("mutation 4 within a minute should be rejected")
	}
	if metrics.rateLimitHits != 1 {
		t.Errorf("rateLimitHits = %d, want 1", metrics.rateLimitHits)
	}

	// Other clients are unaffected.
	if !rl.allowRequest(http.MethodPost, "10.0.0.2", metrics) {
		t.Error("separate client should have its own budget")
	}
}

func TestRateLimiterIgnoresReads(t *testing.T) {
	rl := newRateLimiter(1)
	defer rl.stop()

	metrics := &securityMetrics{}
	for i := 0; i < 10; i++ {
		if !rl.allowRequest(http.MethodGet, "10.0.0.1", metrics) {
			t.Fatalf("read %d should never be limited", i+1)
		}
	}

	// Reads leave the budget untouched.
	if !rl.allowRequest(http.MethodDelete, "10.0.0.1", metrics) {
		t.Error("first mutation should still be allowed after reads")
	}
	if rl.allowRequest(http.MethodDelete, "10.0.0.1", metrics) {
		t.Error("second mutation should exceed a budget of 1")
	}
}

func TestRateLimiterDefaultBudget(t *testing.T) {
	rl := newRateLimiter(0)
	defer rl.stop()

	if rl.perMinute != 60 {
		t.Errorf("perMinute = %d, want fallback 60", rl.perMinute)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(newFakeService())
	defer s.Shutdown(context.Background())

	rec := doRequest(s, http.MethodGet, "/api/expenses", nil, "")

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct", "203.0.113.7:1234", "", "203.0.113.7"},
		{"trusted proxy honors XFF", "127.0.0.1:1234", "203.0.113.9", "203.0.113.9"},
		{"untrusted peer ignores XFF", "203.0.113.7:1234", "10.1.1.1", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(r); got != tt.want {
				t.Errorf("extractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	metrics := &securityMetrics{}

	r := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	if detectSuspiciousRequest(r, metrics) {
		t.Error("plain API request should not be suspicious")
	}

	r = httptest.NewRequest(http.MethodGet, "/api/expenses?q="+strings.Repeat("a", 3000), nil)
	if !detectSuspiciousRequest(r, metrics) {
		t.Error("oversized URL should be suspicious")
	}

	r = httptest.NewRequest(http.MethodGet, "/.git/config", nil)
	if !detectSuspiciousRequest(r, metrics) {
		t.Error("dotfile probing should be suspicious")
	}

	if metrics.suspiciousRequests != 2 {
		t.Errorf("suspiciousRequests = %d, want 2", metrics.suspiciousRequests)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Swiggy  ", "Swiggy"},
		{"Lunch\x00meeting", "Lunchmeeting"},
		{"multi\nline", "multi\nline"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
