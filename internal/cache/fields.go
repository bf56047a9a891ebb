// Package cache holds the Redis-backed response cache for the fields
// listing.  Entries are keyed per user so one caller can never see another
// caller's fields, and every field mutation invalidates the owner's entry
// eagerly; the TTL only bounds staleness if an invalidation is lost.
package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/grassly/grassly/internal/config"
)

// Fields caches the JSON body of GET /api/fields per authenticated user.
// A nil Redis client disables it entirely.
type Fields struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

func NewFields(cfg config.CacheConfig, rdb *redis.Client) *Fields {
	return &Fields{cfg: cfg, rdb: rdb}
}

func (f *Fields) enabled() bool { return f != nil && f.cfg.Enabled && f.rdb != nil }

func (f *Fields) key(userID int64) string {
	return fmt.Sprintf("%s:fields:u%d", f.cfg.Prefix, userID)
}

// Invalidate drops the cached listing for one user.  Called by every
// create/update/delete handler so a follow-up list reflects the mutation.
func (f *Fields) Invalidate(ctx context.Context, userID int64) {
	if !f.enabled() {
		return
	}
	_ = f.rdb.Del(ctx, f.key(userID)).Err()
}

// Middleware serves a cached response when one exists and captures the
// handler's output otherwise.  It must run after JWTAuth so the user id is
// in the context.
func (f *Fields) Middleware() echo.MiddlewareFunc {
	if !f.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
	}
	ttl := f.cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	maxBody := int64(f.cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := c.Get("user_id").(int64)
			if !ok {
				return next(c)
			}
			ctx := c.Request().Context()
			key := f.key(uid)

			if bs, err := f.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, body, ok := decodePayload(bs); ok {
					c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
				_ = f.rdb.SetEx(context.Background(), key, encodePayload(cw.status, cw.buf.Bytes()), ttl).Err()
			}
			return nil
		}
	}
}

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// encodePayload packs: [4 bytes status][body]
func encodePayload(status int, body []byte) []byte {
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	copy(out[4:], body)
	return out
}

func decodePayload(bs []byte) (status int, body []byte, ok bool) {
	if len(bs) < 4 {
		return 0, nil, false
	}
	return int(binary.BigEndian.Uint32(bs[0:4])), bs[4:], true
}
