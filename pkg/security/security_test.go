package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestCORS(t *testing.T) {
	t.Run("allowed origin is echoed with credentials", func(t *testing.T) {
		router := corsRouter([]string{"http://localhost:3000"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Allow-Origin = %q, want the request origin", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Allow-Credentials = %q, want true", got)
		}
		if got := w.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin", got)
		}
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		router := corsRouter([]string{"http://localhost:3000"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://evil.example")
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		router := corsRouter([]string{"*"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("Allow-Credentials = %q, want empty with wildcard", got)
		}
	})

	t.Run("preflight is answered with 204 and max-age", func(t *testing.T) {
		router := corsRouter([]string{"http://localhost:3000"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
		if got := w.Header().Get("Access-Control-Max-Age"); got != corsMaxAge {
			t.Errorf("Max-Age = %q, want %q", got, corsMaxAge)
		}
	})
}

func TestRateLimiterVisitorStore(t *testing.T) {
	t.Run("allows up to burst then refuses", func(t *testing.T) {
		store := newVisitorStore(3, time.Minute)
		for i := 0; i < 3; i++ {
			if !store.allow("10.0.0.1") {
				t.Fatalf("request %d unexpectedly limited", i+1)
			}
		}
		if store.allow("10.0.0.1") {
			t.Error("request over burst was allowed")
		}
	})

	t.Run("keys are limited independently", func(t *testing.T) {
		store := newVisitorStore(1, time.Minute)
		if !store.allow("10.0.0.1") {
			t.Fatal("first key limited on first request")
		}
		if !store.allow("10.0.0.2") {
			t.Error("second key limited by first key's usage")
		}
	})

	t.Run("sweep drops idle entries", func(t *testing.T) {
		store := newVisitorStore(1, time.Minute)
		store.allow("10.0.0.1")
		store.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
		store.sweep(time.Minute)
		if _, ok := store.visitors["10.0.0.1"]; ok {
			t.Error("idle visitor survived sweep")
		}
	})
}
