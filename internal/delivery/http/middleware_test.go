package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{"http://localhost:3000"},
			want:           true,
		},
		{
			name:           "wildcard port",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:*"},
			want:           true,
		},
		{
			name:           "second entry matches",
			origin:         "https://foodlens.app",
			allowedOrigins: []string{"http://localhost:*", "https://foodlens.app"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "exact entry does not match prefix",
			origin:         "http://localhost:30000",
			allowedOrigins: []string{"http://localhost:3000"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "http://localhost:3000",
			allowedOrigins: []string{},
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantCORS   bool
	}{
		{
			name:       "allowed origin - GET request",
			origin:     "http://localhost:5173",
			method:     "GET",
			wantStatus: http.StatusOK,
			wantCORS:   true,
		},
		{
			name:       "allowed origin - OPTIONS request",
			origin:     "http://localhost:5173",
			method:     "OPTIONS",
			wantStatus: http.StatusNoContent,
			wantCORS:   true,
		},
		{
			name:       "disallowed origin",
			origin:     "http://evil.com",
			method:     "GET",
			wantStatus: http.StatusOK,
			wantCORS:   false,
		},
		{
			name:       "no origin header",
			origin:     "",
			method:     "GET",
			wantStatus: http.StatusOK,
			wantCORS:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware([]string{"http://localhost:*"}))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "OK")
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			corsHeader := w.Header().Get("Access-Control-Allow-Origin")
			if tt.wantCORS {
				if corsHeader != tt.origin {
					t.Errorf("Access-Control-Allow-Origin = %s, want %s", corsHeader, tt.origin)
				}
				if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
					t.Errorf("Access-Control-Allow-Credentials not set to true")
				}
			} else if corsHeader != "" {
				t.Errorf("Access-Control-Allow-Origin should not be set, got %s", corsHeader)
			}
		})
	}
}

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:*"}))
	router.POST("/analyze", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	req := httptest.NewRequest("OPTIONS", "/analyze", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("Access-Control-Allow-Methods = %q, want POST listed", w.Header().Get("Access-Control-Allow-Methods"))
	}
	if w.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Errorf("Access-Control-Allow-Headers not set")
	}
	if w.Header().Get("Access-Control-Max-Age") == "" {
		t.Errorf("Access-Control-Max-Age not set")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	newRouter := func(perMinute int) *gin.Engine {
		router := gin.New()
		router.POST("/analyze", RateLimitMiddleware(perMinute), func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})
		return router
	}

	send := func(router *gin.Engine, ip string) int {
		req := httptest.NewRequest("POST", "/analyze", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("burst then reject", func(t *testing.T) {
		router := newRouter(2)

		for i := 0; i < 2; i++ {
			if code := send(router, "10.0.0.1"); code != http.StatusOK {
				t.Fatalf("request %d status = %d, want %d", i, code, http.StatusOK)
			}
		}
		if code := send(router, "10.0.0.1"); code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want %d", code, http.StatusTooManyRequests)
		}
	})

	t.Run("clients are limited separately", func(t *testing.T) {
		router := newRouter(1)

		if code := send(router, "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("first client status = %d", code)
		}
		if code := send(router, "10.0.0.2"); code != http.StatusOK {
			t.Errorf("second client status = %d, want %d", code, http.StatusOK)
		}
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		router := newRouter(0)

		for i := 0; i < 50; i++ {
			if code := send(router, "10.0.0.1"); code != http.StatusOK {
				t.Fatalf("request %d status = %d, want %d", i, code, http.StatusOK)
			}
		}
	})
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(LoggerMiddleware(log))
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	router.GET("/bad", func(c *gin.Context) { c.String(http.StatusBadRequest, "bad") })

	for _, path := range []string{"/ok", "/bad"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	out := buf.String()
	if !strings.Contains(out, `"path":"/ok"`) || !strings.Contains(out, `"level":"info"`) {
		t.Errorf("missing info line for /ok in %s", out)
	}
	if !strings.Contains(out, `"path":"/bad"`) || !strings.Contains(out, `"level":"warning"`) {
		t.Errorf("missing warning line for /bad in %s", out)
	}
}

func TestIPRateLimiter_ForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	if !l.allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("second request inside the same minute should be limited")
	}

	now = now.Add(11 * time.Minute)
	if !l.allow("10.0.0.2") {
		t.Fatal("new client should pass")
	}

	if _, ok := l.visitors["10.0.0.1"]; ok {
		t.Errorf("idle client was not forgotten")
	}
	if len(l.visitors) != 1 {
		t.Errorf("visitors = %d, want 1", len(l.visitors))
	}
}

func TestRateLimitMiddleware_StartsNoGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 50; i++ {
		RateLimitMiddleware(30)
	}

	if after := runtime.NumGoroutine(); after-before >= 50 {
		t.Errorf("goroutines grew from %d to %d", before, after)
	}
}
