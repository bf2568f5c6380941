package ratelimit

import (
	"time"
)

// Config holds rate limiter configuration.
type Config struct {
	// RedisAddr is the Redis server address (e.g. "localhost:6379").
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional).
	RedisPassword string

	// RedisDB is the Redis database number.
	RedisDB int

	// DefaultLimit applies to services with no specific limit.
	DefaultLimit int

	// DefaultWindow is the window for the default limit.
	DefaultWindow time.Duration

	// ServiceLimits maps service names to their specific limits.
	ServiceLimits map[string]ServiceLimit

	// KeyPrefix is the prefix for Redis keys.
	KeyPrefix string

	// ClientIDHeader is the request header carrying the client identity.
	ClientIDHeader string

	// FallbackClientID buckets requests that carry no client identity.
	FallbackClientID string
}

// ServiceLimit defines the rate limit for one service.
type ServiceLimit struct {
	Limit  int
	Window time.Duration
}

// DefaultConfig returns a config tuned for the account and mail
// services: credential endpoints get tight limits, everything else a
// loose one.
func DefaultConfig() Config {
	return Config{
		RedisAddr:     "localhost:6379",
		DefaultLimit:  120,
		DefaultWindow: time.Minute,
		ServiceLimits: map[string]ServiceLimit{
			"login":           {Limit: 10, Window: time.Minute},
			"register":        {Limit: 5, Window: time.Minute},
			"forgot-password": {Limit: 3, Window: 15 * time.Minute},
			"send-contact":    {Limit: 5, Window: time.Hour},
		},
		KeyPrefix:        "nextchat:ratelimit:",
		ClientIDHeader:   "X-Client-ID",
		FallbackClientID: "anonymous",
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithRedisAddr sets the Redis server address.
func WithRedisAddr(addr string) Option {
	return func(c *Config) {
		c.RedisAddr = addr
	}
}

// WithRedisPassword sets the Redis authentication password.
func WithRedisPassword(password string) Option {
	return func(c *Config) {
		c.RedisPassword = password
	}
}

// WithClientIDHeader sets the header name for client ID extraction.
func WithClientIDHeader(header string) Option {
	return func(c *Config) {
		c.ClientIDHeader = header
	}
}

// WithServiceLimit sets a specific rate limit for a service.
func WithServiceLimit(serviceName string, limit int, window time.Duration) Option {
	return func(c *Config) {
		c.ServiceLimits[serviceName] = ServiceLimit{
			Limit:  limit,
			Window: window,
		}
	}
}
