package kit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	_, ok := l.Allow("a")
	assert.True(t, ok)
	now = now.Add(10 * time.Second)
	_, ok = l.Allow("a")
	assert.True(t, ok)

	wait, ok := l.Allow("a")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, wait)

	_, ok = l.Allow("b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(51 * time.Second)
	_, ok = l.Allow("a")
	assert.True(t, ok, "oldest hit expired")
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestIPRateLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	l := NewIPRateLimiter(1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	admitted := 0
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "198.51.100.4:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.%d.%d", i/256, i%256))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			admitted++
		}
	}
	assert.Equal(t, 1, admitted)
}

func TestIPRateLimiter_SweepsIdleKeys(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(5, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		_, ok := l.Allow(fmt.Sprintf("k%d", i))
		assert.True(t, ok)
	}
	assert.Len(t, l.hits, 50)

	now = now.Add(2 * time.Minute)
	_, ok := l.Allow("fresh")
	assert.True(t, ok)
	assert.Len(t, l.hits, 1)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 ,10.0.0.1")

	l := NewIPRateLimiter(1, time.Minute)
	assert.Equal(t, "192.0.2.7", l.clientIP(req))

	l.TrustForwardedFor = true
	assert.Equal(t, "203.0.113.9", l.clientIP(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "192.0.2.7", l.clientIP(req))
}
