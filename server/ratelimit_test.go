package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1.0 / 60.0), Burst: 3, CleanupInterval: time.Minute})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("192.0.2.1"), "request %d", i)
	}
	require.False(t, rl.Allow("192.0.2.1"))
	require.True(t, rl.Allow("192.0.2.2"))
	require.Equal(t, 2, rl.Len())
}

func TestRateLimiter_CleanupDropsIdleClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	rl.Allow("192.0.2.1")
	rl.cleanup(time.Now())
	require.Equal(t, 1, rl.Len())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	require.Zero(t, rl.Len())
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(RateLimiterConfig{})
	rl.Stop()
	rl.Stop()
}

func TestRateLimiter_Middleware(t *testing.T) {
	defer goleak.VerifyNone(t)

	rl := NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(1.0 / 60.0), Burst: 1, CleanupInterval: time.Minute})
	defer rl.Stop()

	handler := rl.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = "192.0.2.1:5000"

	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Same client, new port
	req.RemoteAddr = "192.0.2.1:5001"
	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "198.51.100.7:443"
	require.Equal(t, "198.51.100.7", clientIP(req))

	req.RemoteAddr = "198.51.100.7"
	require.Equal(t, "198.51.100.7", clientIP(req))
}
