package config

import "strings"

// CacheConfig defines settings for the response cache middleware
// applied to the public trip browse endpoints.  Seat availability is
// never cached: a stale seat map would defeat the realtime updates.
// When Enabled is false or no Redis client is configured, caching is
// disabled.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          int // seconds
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envInt("CACHE_TTL_SECONDS", 30),
        KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       envStr("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}
