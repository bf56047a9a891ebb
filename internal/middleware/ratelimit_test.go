package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/grassly/grassly/internal/config"
)

func limitedEcho(cfg config.RateLimitConfig) *echo.Echo {
	e := echo.New()
	e.POST("/api/login", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, NewTokenBucket(cfg, nil))
	return e
}

func post(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       3,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		Prefix:         "rl",
	}
	e := limitedEcho(cfg)

	for i := 0; i < 3; i++ {
		rec := post(e, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}
	rec := post(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// A different client address has its own bucket.
	rec = post(e, "10.0.0.2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenBucketDisabled(t *testing.T) {
	e := limitedEcho(config.RateLimitConfig{Enabled: false})
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, post(e, "10.0.0.1").Code)
	}
}
