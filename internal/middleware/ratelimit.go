package middleware

import (
    "fmt"
    "math"
    "net/http"
    "strconv"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/grassly/grassly/internal/config"
)

// NewTokenBucket builds a rate-limiting middleware for the login and
// register endpoints, keyed by client IP and route.  When a Redis client is
// available the bucket state lives there and survives restarts; without
// one the limiter falls back to process-local in-memory buckets that reset
// on restart.  Redis errors fail open so an outage never locks users out.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }

    mem := &memoryBuckets{m: map[string]*memBucket{}}

    limiterScript := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])

        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        if interval_ms > 0 and refill_tokens > 0 then
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + (intervals * refill_tokens))
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            local until_next = interval_ms - (now_ms - last_refill)
            if until_next < 0 then until_next = 0 end
            retry_after_ms = until_next
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
        redis.call('EXPIRE', key, ttl_seconds)

        return { allowed, tokens, retry_after_ms }
    `)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            key := fmt.Sprintf("%s:ip:%s:route:%s %s", cfg.Prefix, ip, c.Request().Method, c.Path())
            now := time.Now()

            var (
                allowed   bool
                remaining int64
                retryMs   int64
            )

            if rdb != nil {
                args := []interface{}{
                    now.UnixMilli(),
                    cfg.Capacity,
                    cfg.RefillTokens,
                    cfg.RefillInterval.Milliseconds(),
                    int64(cfg.TTL / time.Second),
                }
                vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
                if err != nil {
                    if cfg.Debug {
                        c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
                    }
                    return next(c)
                }
                arr, ok := vals.([]interface{})
                if !ok || len(arr) != 3 {
                    if cfg.Debug {
                        c.Logger().Warnf("[ratelimit] unexpected script result for key=%s: %#v", key, vals)
                    }
                    return next(c)
                }
                if i, ok := arr[0].(int64); ok {
                    allowed = i == 1
                } else {
                    allowed = fmt.Sprint(arr[0]) == "1"
                }
                remaining = asInt64(arr[1])
                retryMs = asInt64(arr[2])
            } else {
                allowed, remaining, retryMs = mem.take(key, cfg, now)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if !allowed {
                secs := int(math.Ceil(float64(retryMs) / 1000.0))
                if secs < 0 {
                    secs = 0
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                if cfg.Debug {
                    c.Logger().Infof("[ratelimit] block key=%s remaining=%d retry=%dms", key, remaining, retryMs)
                }
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "message":     "too many attempts, please try again later",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

// memoryBuckets mirrors the Lua script's discrete-refill semantics for the
// no-Redis case.  Counters are process local and reset on restart.
type memoryBuckets struct {
    mu sync.Mutex
    m  map[string]*memBucket
}

type memBucket struct {
    tokens     int
    lastRefill time.Time
    touched    time.Time
}

func (b *memoryBuckets) take(key string, cfg config.RateLimitConfig, now time.Time) (allowed bool, remaining int64, retryMs int64) {
    b.mu.Lock()
    defer b.mu.Unlock()

    b.prune(now, cfg.TTL)

    bk, ok := b.m[key]
    if !ok {
        bk = &memBucket{tokens: cfg.Capacity, lastRefill: now}
        b.m[key] = bk
    }
    bk.touched = now

    if cfg.RefillInterval > 0 && cfg.RefillTokens > 0 {
        intervals := int(now.Sub(bk.lastRefill) / cfg.RefillInterval)
        if intervals > 0 {
            bk.tokens += intervals * cfg.RefillTokens
            if bk.tokens > cfg.Capacity {
                bk.tokens = cfg.Capacity
            }
            bk.lastRefill = bk.lastRefill.Add(time.Duration(intervals) * cfg.RefillInterval)
        }
    }

    if bk.tokens > 0 {
        bk.tokens--
        return true, int64(bk.tokens), 0
    }
    until := cfg.RefillInterval - now.Sub(bk.lastRefill)
    if until < 0 {
        until = 0
    }
    return false, 0, until.Milliseconds()
}

// prune drops buckets idle past the TTL so the map cannot grow without bound.
func (b *memoryBuckets) prune(now time.Time, ttl time.Duration) {
    if len(b.m) < 4096 {
        return
    }
    for k, bk := range b.m {
        if now.Sub(bk.touched) > ttl {
            delete(b.m, k)
        }
    }
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int32:
        return int64(t)
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case float32:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}
