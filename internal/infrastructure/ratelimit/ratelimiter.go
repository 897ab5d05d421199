// Package ratelimit throttles abusable endpoints such as magic-link
// requests. Keys are caller supplied, usually "<route>:<client ip>".
package ratelimit

import (
	"context"
	"time"
)

type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

// IsZero reports whether no window is limited.
func (c RateLimitConfig) IsZero() bool {
	return c.RequestsPerMinute <= 0 && c.RequestsPerHour <= 0
}

type RateLimiter interface {
	// Allow records one request for key and reports whether it is within
	// every configured window.
	Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error)
	Reset(ctx context.Context, key string) error
}

type window struct {
	duration time.Duration
	limit    int
}

func windowsOf(config RateLimitConfig) []window {
	var out []window
	if config.RequestsPerMinute > 0 {
		out = append(out, window{time.Minute, config.RequestsPerMinute})
	}
	if config.RequestsPerHour > 0 {
		out = append(out, window{time.Hour, config.RequestsPerHour})
	}
	return out
}
