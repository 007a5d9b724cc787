package config

import "time"

// RateLimitConfig controls the Redis token-bucket limiter applied to the
// payment and settlement routes.  Those endpoints move money, so the limiter
// defaults are deliberately tighter than a general API limit.
type RateLimitConfig struct {
	Enabled        bool          // master switch; disabled when Redis is unavailable
	Capacity       int           // bucket capacity (burst size)
	RefillTokens   int           // tokens added per refill interval
	RefillInterval time.Duration // how often tokens are refilled
	TTL            time.Duration // idle expiry of a bucket key in Redis
	KeyStrategy    string        // ip | user | route | ip_user | user_route | ip_user_route
	Prefix         string        // Redis key prefix
}

// LoadRateLimitConfig reads the limiter settings from the environment and
// normalizes them so the limiter never runs with a zero capacity or interval.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 30),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "user_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
