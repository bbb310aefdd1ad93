package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(LocaleFromContext(r.Context())))
})

func TestRateLimiterPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2, time.Minute)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatalf("burst of 2 should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("third request in the same instant should be throttled")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("other clients are not affected")
	}
	fixed = fixed.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Fatalf("token should refill after one second")
	}
}

func TestRateLimiterSweepsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("a")
	now = now.Add(2 * time.Minute)
	rl.Allow("b")
	if _, ok := rl.limiters["a"]; ok {
		t.Fatalf("idle limiter should be swept")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	h := NewRateLimiter(1, 1, time.Minute).Middleware(okHandler)
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/responses", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rr.Code)
		}
	}
}

func TestLocaleMiddleware(t *testing.T) {
	h := LocaleMiddleware(okHandler)
	cases := []struct{ query, header, want string }{
		{"", "", "en"},
		{"pt", "", "pt"},
		{"", "pt-BR,pt;q=0.9", "pt"},
		{"fr", "de", "en"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/questions?lang="+tc.query, nil)
		if tc.header != "" {
			req.Header.Set("Accept-Language", tc.header)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Body.String() != tc.want {
			t.Fatalf("lang=%q accept=%q: got %q, want %q", tc.query, tc.header, rr.Body.String(), tc.want)
		}
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://ui.example"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/responses", nil)
	req.Header.Set("Origin", "https://ui.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || rr.Header().Get("Access-Control-Allow-Origin") != "https://ui.example" {
		t.Fatalf("preflight: %d %v", rr.Code, rr.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/questions", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unlisted origin must not be allowed")
	}
}

func TestNoStorePrefixes(t *testing.T) {
	h := NoStore("/api/")(okHandler)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatalf("api responses must be no-store")
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	if rr.Header().Get("Cache-Control") != "" {
		t.Fatalf("static responses keep default caching")
	}
}

func TestSecureHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecureHeaders(okHandler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("missing security headers: %v", rr.Header())
	}
}
