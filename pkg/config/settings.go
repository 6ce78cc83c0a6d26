package config

import (
	"fmt"
	"time"
)

// Settings is a typed snapshot of the store.
type Settings struct {
	BaseURI        string
	Timeout        time.Duration // per attempt
	ConnectTimeout time.Duration
	Headers        map[string]string
	APIKey         string
	Retry          RetrySettings
	Pagination     PaginationSettings
	Debug          bool
	VerifySSL      bool
	DryRun         bool
	Cache          CacheSettings
	RateLimit      RateLimitSettings
}

// RetrySettings configures the transport retry loop.
type RetrySettings struct {
	MaxAttempts int // retries after the first attempt; 0 disables retrying
	Delay       time.Duration
	Multiplier  float64
}

// PaginationSettings bounds list-style endpoints.
type PaginationSettings struct {
	PerPage  int
	MaxItems int
}

// CacheSettings configures the optional response cache.
type CacheSettings struct {
	Enabled   bool
	Driver    string // file, redis, mongo or null
	TTL       time.Duration
	Dir       string
	RedisAddr string
	MongoURI  string
}

// RateLimitSettings configures client-side request pacing.
// PerSecond <= 0 disables it.
type RateLimitSettings struct {
	PerSecond float64
	Burst     int
}

// Settings returns a typed snapshot of the current values.
func (s *Store) Settings() Settings {
	return Settings{
		BaseURI:        s.String("base_uri", ""),
		Timeout:        time.Duration(s.Int("timeout", 30)) * time.Second,
		ConnectTimeout: time.Duration(s.Int("connect_timeout", 10)) * time.Second,
		Headers:        s.StringMap("headers"),
		APIKey:         s.String("api_key", ""),
		Retry: RetrySettings{
			MaxAttempts: s.Int("retry.max_attempts", 3),
			Delay:       time.Duration(s.Int("retry.delay", 1000)) * time.Millisecond,
			Multiplier:  s.Float("retry.multiplier", 2),
		},
		Pagination: PaginationSettings{
			PerPage:  s.Int("pagination.per_page", 20),
			MaxItems: s.Int("pagination.max_items", 100),
		},
		Debug:     s.Bool("debug", false),
		VerifySSL: s.Bool("verify_ssl", true),
		DryRun:    s.Bool("dry_run", false),
		Cache: CacheSettings{
			Enabled:   s.Bool("cache.enabled", false),
			Driver:    s.String("cache.driver", "file"),
			TTL:       time.Duration(s.Int("cache.ttl", 3600)) * time.Second,
			Dir:       s.String("cache.dir", ""),
			RedisAddr: s.String("cache.redis_addr", "localhost:6379"),
			MongoURI:  s.String("cache.mongo_uri", "mongodb://localhost:27017"),
		},
		RateLimit: RateLimitSettings{
			PerSecond: s.Float("rate_limit.per_second", 0),
			Burst:     s.Int("rate_limit.burst", 1),
		},
	}
}

// String returns the string at key, or def when missing or not a string.
func (s *Store) String(key, def string) string {
	if v, ok := s.Get(key, nil).(string); ok {
		return v
	}
	return def
}

// Int returns the integer at key, or def when missing or not an integer.
func (s *Store) Int(key string, def int) int {
	if v, ok := s.Get(key, nil).(int); ok {
		return v
	}
	return def
}

// Float returns the number at key as float64, or def when missing.
func (s *Store) Float(key string, def float64) float64 {
	if f, ok := toFloat(s.Get(key, nil)); ok {
		return f
	}
	return def
}

// Bool returns the boolean at key, or def when missing or not a boolean.
func (s *Store) Bool(key string, def bool) bool {
	if v, ok := s.Get(key, nil).(bool); ok {
		return v
	}
	return def
}

// StringMap returns the map at key with every value formatted as a string.
// Missing keys and non-map values yield an empty map.
func (s *Store) StringMap(key string) map[string]string {
	out := map[string]string{}
	m, ok := s.Get(key, nil).(map[string]any)
	if !ok {
		return out
	}
	for k, v := range m {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}
