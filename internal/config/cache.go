package config

import "time"

// CacheConfig defines settings for the fields-list response cache.  When
// Enabled is false or no Redis client is configured, caching is disabled.
// TTL defines the lifetime of cache entries; MaxBodyBytes caps the size of
// responses worth storing.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.  Entries are short-lived
// because the handlers invalidate eagerly on every mutation anyway; the TTL
// only bounds staleness if an invalidation is lost.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1048576),
    }
}
