package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache applied to public
// read-only routes (club and schedule listings).  Wallet and settlement
// routes are never cached; they are per-user and money-bearing.
type CacheConfig struct {
	Enabled      bool            // master switch; disabled when Redis is unavailable
	TTL          time.Duration   // cache entry lifetime
	MaxBodyBytes int             // largest response body worth caching
	KeyStrategy  string          // route | method_route | route_query | method_route_query
	Prefix       string          // Redis key prefix
	Methods      map[string]bool // HTTP methods eligible for caching
}

// LoadCacheConfig reads the cache settings from the environment.
func LoadCacheConfig() CacheConfig {
	methods := make(map[string]bool)
	for _, m := range strings.Split(envStr("CACHE_METHODS", "GET"), ",") {
		if m = strings.ToUpper(strings.TrimSpace(m)); m != "" {
			methods[m] = true
		}
	}
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", time.Minute),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "cache"),
		Methods:      methods,
	}
}
