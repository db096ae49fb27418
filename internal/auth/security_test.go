package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRateLimiter(maxAttempts int) *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     maxAttempts,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
		CleanupInterval: time.Hour, // Long interval to prevent cleanup during test
	})
}

func TestRateLimiter_AllowsInitialAttempts(t *testing.T) {
	rl := newTestRateLimiter(3)
	defer rl.Stop()

	// First 3 attempts should be allowed
	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("192.168.1.1", "testuser")
		if !allowed {
			t.Errorf("Attempt %d should be allowed", i+1)
		}
		rl.RecordFailure("192.168.1.1", "testuser")
	}

	// 4th attempt should be blocked
	allowed, retryAfter := rl.Allow("192.168.1.1", "testuser")
	if allowed {
		t.Error("4th attempt should be blocked")
	}
	if retryAfter == 0 {
		t.Error("retryAfter should be non-zero when blocked")
	}
}

func TestRateLimiter_LockoutExpires(t *testing.T) {
	rl := newTestRateLimiter(2)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.RecordFailure("10.0.0.1", "reader")
	locked, _ := rl.RecordFailure("10.0.0.1", "reader")
	if !locked {
		t.Fatal("second failure should lock")
	}

	now = now.Add(61 * time.Second)
	if allowed, _ := rl.Allow("10.0.0.1", "reader"); !allowed {
		t.Error("attempt should be allowed once the lockout has passed")
	}
}

func TestRateLimiter_FailuresOutsideWindowDoNotAccumulate(t *testing.T) {
	rl := newTestRateLimiter(2)
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.RecordFailure("10.0.0.1", "reader")
	now = now.Add(2 * time.Minute)

	if locked, _ := rl.RecordFailure("10.0.0.1", "reader"); locked {
		t.Error("a failure in a fresh window should not lock")
	}
}

func TestRateLimiter_SuccessResetsCounter(t *testing.T) {
	rl := newTestRateLimiter(3)
	defer rl.Stop()

	rl.RecordFailure("192.168.1.1", "testuser")
	rl.RecordFailure("192.168.1.1", "testuser")

	rl.RecordSuccess("192.168.1.1", "testuser")

	allowed, _ := rl.Allow("192.168.1.1", "testuser")
	if !allowed {
		t.Error("Should be allowed after successful login")
	}
}

func TestRateLimiter_DifferentUsersAreIndependent(t *testing.T) {
	rl := newTestRateLimiter(2)
	defer rl.Stop()

	rl.RecordFailure("192.168.1.1", "user1")
	rl.RecordFailure("192.168.1.1", "user1")

	allowed, _ := rl.Allow("192.168.1.1", "user1")
	if allowed {
		t.Error("user1 should be blocked")
	}

	allowed, _ = rl.Allow("192.168.1.1", "user2")
	if !allowed {
		t.Error("user2 should be allowed")
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newTestRateLimiter(2)
	rl.Stop()
	rl.Stop()
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	headers := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for header, expected := range headers {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("Header %s = %q, want %q", header, got, expected)
		}
	}

	if csp := rr.Header().Get("Content-Security-Policy"); csp == "" {
		t.Error("Content-Security-Policy header should be set")
	}
	if pp := rr.Header().Get("Permissions-Policy"); pp == "" {
		t.Error("Permissions-Policy header should be set")
	}
}

func TestHSTSHeader(t *testing.T) {
	router := gin.New()
	router.Use(StrictTransportSecurityMiddleware(31536000))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// HTTP request - should not have HSTS
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if hsts := rr.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Error("HSTS should not be set for HTTP requests")
	}

	// HTTPS request (via X-Forwarded-Proto) - should have HSTS
	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if hsts := rr.Header().Get("Strict-Transport-Security"); hsts != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", hsts)
	}
}

func TestUsernameValidation(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"ab", false},
		{"abc", true},
		{"jane.doe", true},
		{"user_name-1", true},
		{"has space", false},
		{"semi;colon", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			if got := usernamePattern.MatchString(tt.username); got != tt.valid {
				t.Errorf("usernamePattern.MatchString(%q) = %v, want %v", tt.username, got, tt.valid)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"BEARER  abc ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			if token != tt.token || ok != tt.ok {
				t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.token, tt.ok)
			}
		})
	}
}
