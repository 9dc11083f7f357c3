package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	echo := func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		c.String(http.StatusOK, string(body))
	}
	r.POST("/echo", echo)
	r.GET("/echo", echo)
	return r
}

func send(r http.Handler, method, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/echo", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDeduplicatorRejectsRepeatWithinWindow(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }
	r := newEngine(d.Middleware())

	if w := send(r, http.MethodPost, `{"user_id":"u-1"}`); w.Code != http.StatusOK || w.Body.String() != `{"user_id":"u-1"}` {
		t.Fatalf("first request: %d %q", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodPost, `{"user_id":"u-1"}`); w.Code != http.StatusTooManyRequests {
		t.Errorf("duplicate status = %d", w.Code)
	}
	if w := send(r, http.MethodPost, `{"user_id":"u-2"}`); w.Code != http.StatusOK {
		t.Errorf("different body status = %d", w.Code)
	}

	now = now.Add(2 * time.Second)
	if w := send(r, http.MethodPost, `{"user_id":"u-1"}`); w.Code != http.StatusOK {
		t.Errorf("after window status = %d", w.Code)
	}
}

func TestDeduplicatorIgnoresGet(t *testing.T) {
	r := newEngine(NewDeduplicator(time.Minute).Middleware())
	for i := 0; i < 3; i++ {
		if w := send(r, http.MethodGet, ""); w.Code != http.StatusOK {
			t.Fatalf("GET %d status = %d", i, w.Code)
		}
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other key should have its own bucket")
	}

	now = now.Add(500 * time.Millisecond)
	if !rl.Allow("a") {
		t.Error("half window should refill one token")
	}
	if rl.Allow("a") {
		t.Error("bucket should be empty again")
	}
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		rl.Allow(ip)
	}
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	if len(rl.buckets) != 3 {
		t.Fatalf("buckets = %d", len(rl.buckets))
	}

	now = now.Add(2 * time.Second)
	if !rl.Allow("10.0.0.9") {
		t.Fatal("new key should pass")
	}
	if len(rl.buckets) != 1 {
		t.Errorf("idle buckets not evicted, %d left", len(rl.buckets))
	}
	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Error("evicted key should start with a full bucket")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("recreated bucket should still enforce capacity")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(1, time.Minute))
	if w := send(r, http.MethodGet, ""); w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	w := send(r, http.MethodGet, "")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "60" {
		t.Errorf("status = %d, retry-after = %q", w.Code, w.Header().Get("Retry-After"))
	}
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))
	if w := send(r, http.MethodPost, "short"); w.Code != http.StatusOK {
		t.Errorf("small body status = %d", w.Code)
	}
	if w := send(r, http.MethodPost, strings.Repeat("x", 32)); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d", w.Code)
	}

	unlimited := newEngine(BodySizeLimit(0))
	if w := send(unlimited, http.MethodPost, strings.Repeat("x", 32)); w.Code != http.StatusOK {
		t.Errorf("unlimited status = %d", w.Code)
	}
}

func TestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("slow status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	if w.Code != http.StatusOK {
		t.Errorf("fast status = %d", w.Code)
	}
}
