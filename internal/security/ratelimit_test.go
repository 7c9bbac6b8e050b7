package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	t.Run("AllowsUpToRate", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			if !rl.Allow("1.2.3.4") {
				t.Fatalf("Request %d should be allowed", i+1)
			}
		}
		if rl.Allow("1.2.3.4") {
			t.Error("Fourth request should be rejected")
		}
	})

	t.Run("TracksIPsIndependently", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)

		if !rl.Allow("1.1.1.1") {
			t.Error("First IP should be allowed")
		}
		if !rl.Allow("2.2.2.2") {
			t.Error("Second IP should be allowed despite the first being exhausted")
		}
		if rl.Allow("1.1.1.1") {
			t.Error("Exhausted IP should be rejected")
		}
	})

	t.Run("RefillsAfterWindow", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)

		if !rl.Allow("3.3.3.3") {
			t.Fatal("First request should be allowed")
		}
		if rl.Allow("3.3.3.3") {
			t.Fatal("Second request should be rejected")
		}

		time.Sleep(15 * time.Millisecond)

		if !rl.Allow("3.3.3.3") {
			t.Error("Request after the window should be allowed again")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	t.Run("RemoteAddr", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		if got := GetClientIP(r); got != "10.0.0.1:1234" {
			t.Errorf("GetClientIP() = %q", got)
		}
	})

	t.Run("ForwardedForWins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		r.Header.Set("X-Forwarded-For", "203.0.113.7")
		if got := GetClientIP(r); got != "203.0.113.7" {
			t.Errorf("GetClientIP() = %q, want 203.0.113.7", got)
		}
	})

	t.Run("RealIP", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Real-IP", "198.51.100.9")
		if got := GetClientIP(r); got != "198.51.100.9" {
			t.Errorf("GetClientIP() = %q, want 198.51.100.9", got)
		}
	})
}
