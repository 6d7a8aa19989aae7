package config

import "time"

// CacheConfig configures the Redis response cache of the read API. Only
// successful GET responses are stored, under a key that includes the
// current data generation; a reload bumps the generation, so entries never
// outlive the data they were built from.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables. Merged pages can be large, so the
// default body cap is 8 MiB.
func LoadCacheConfig() CacheConfig {
	c := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 5*time.Minute),
		Prefix:       envStr("CACHE_PREFIX", "etlcache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 8<<20),
	}
	if c.TTL <= 0 {
		c.TTL = 5 * time.Minute
	}
	return c
}

// GenerationKey is the Redis counter bumped after every reload.
func (c CacheConfig) GenerationKey() string {
	return c.Prefix + ":generation"
}
