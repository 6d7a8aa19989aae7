package config

// RateLimitConfig configures the Redis token bucket in front of the API.
// The bucket holds Capacity tokens and refills continuously at
// RefillPerSecond.
type RateLimitConfig struct {
	Enabled         bool
	Capacity        int
	RefillPerSecond float64
	KeyStrategy     string // ip, subject or ip_route
	Prefix          string
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables. Non-positive capacity
// or refill values fall back to 1.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled:         envBool("RATE_LIMIT_ENABLED", true),
		Capacity:        envInt("RATE_LIMIT_CAPACITY", 60),
		RefillPerSecond: envFloat("RATE_LIMIT_REFILL_PER_SEC", 1),
		KeyStrategy:     envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:          envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillPerSecond <= 0 {
		c.RefillPerSecond = 1
	}
	return c
}
