package auth

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/config"
)

func TestIsLocalPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/api/books?genre=Fantasy", true},
		{"", false},
		{"books", false},
		{"//evil.example", false},
		{"https://evil.example", false},
		{"/\\evil.example", false},
	}
	for _, tt := range tests {
		if got := isLocalPath(tt.path); got != tt.want {
			t.Errorf("isLocalPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if got := sanitizeRedirectPath("//evil.example"); got != "/" {
		t.Errorf("sanitizeRedirectPath() = %q, want /", got)
	}
}

func newManualLimiter(t *testing.T, clock *time.Time) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(config.Auth{
		MaxLoginAttempts: 3,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  10 * time.Minute,
	})
	t.Cleanup(rl.Stop)
	rl.now = func() time.Time { return *clock }
	return rl
}

func TestRateLimiter_LocksOutAfterMaxAttempts(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newManualLimiter(t, &now)

	for i := 0; i < 2; i++ {
		if locked, _ := rl.RecordFailure("10.0.0.1"); locked {
			t.Fatalf("locked too early at attempt %d", i+1)
		}
		if ok, _ := rl.Allow("10.0.0.1"); !ok {
			t.Fatalf("attempt %d should still be allowed", i+2)
		}
	}

	locked, retry := rl.RecordFailure("10.0.0.1")
	if !locked || retry != 10*time.Minute {
		t.Fatalf("expected lockout, got locked=%v retry=%v", locked, retry)
	}

	now = now.Add(4 * time.Minute)
	ok, retry := rl.Allow("10.0.0.1")
	if ok || retry != 6*time.Minute {
		t.Errorf("Allow() = %v, %v; want false, 6m", ok, retry)
	}

	if ok, _ := rl.Allow("10.0.0.2"); !ok {
		t.Error("other IPs must not be affected")
	}

	now = now.Add(7 * time.Minute)
	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Error("lockout should expire")
	}
}

func TestRateLimiter_WindowResetsCount(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newManualLimiter(t, &now)

	rl.RecordFailure("10.0.0.1")
	rl.RecordFailure("10.0.0.1")
	now = now.Add(2 * time.Minute)

	if locked, _ := rl.RecordFailure("10.0.0.1"); locked {
		t.Error("failures outside the window should not count")
	}
}

func TestRateLimiter_SuccessClears(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newManualLimiter(t, &now)

	rl.RecordFailure("10.0.0.1")
	rl.RecordFailure("10.0.0.1")
	rl.RecordSuccess("10.0.0.1")

	if locked, _ := rl.RecordFailure("10.0.0.1"); locked {
		t.Error("success should reset the counter")
	}

	rl.RecordFailure("10.0.0.9")
	now = now.Add(time.Hour)
	rl.cleanup()
	rl.mu.Lock()
	remaining := len(rl.attempts)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Errorf("cleanup left %d records", remaining)
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(), StrictTransportSecurityMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	want := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if !strings.Contains(w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'") {
		t.Errorf("unexpected CSP: %q", w.Header().Get("Content-Security-Policy"))
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.TLS = &tls.ConnectionState{}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS over TLS")
	}
}
