package config

import "time"

// RateLimitConfig configures a Redis token bucket.  Capacity is the burst
// size; RefillTokens are added every RefillInterval.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads the bucket shared by all authenticated routes.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }.normalized()
}

// ForReports derives the stricter bucket applied to report exports, which
// load a whole period of activities and render a workbook per request.
// Keys are per user so one supervisor cannot exhaust another's quota.
func (c RateLimitConfig) ForReports() RateLimitConfig {
    r := c
    r.Capacity = envInt("REPORT_RATE_LIMIT_CAPACITY", 5)
    r.RefillTokens = 1
    r.RefillInterval = envDur("REPORT_RATE_LIMIT_REFILL_INTERVAL", 12*time.Second)
    r.KeyStrategy = "user"
    r.Prefix = c.Prefix + ":informes"
    return r.normalized()
}

func (c RateLimitConfig) normalized() RateLimitConfig {
    if c.Capacity < 1 {
        c.Capacity = 1
    }
    if c.RefillTokens < 1 {
        c.RefillTokens = 1
    }
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    // a bucket must outlive a full refill, or idle keys would reset early
    if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
        c.TTL = minTTL
    }
    return c
}
