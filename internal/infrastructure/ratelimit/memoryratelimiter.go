package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleEviction = 2 * time.Hour

type bucketSet struct {
	limiters []*rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token-bucket limiter used when redis is
// disabled. Each window becomes a bucket that refills limit tokens per
// window with a burst of limit.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucketSet
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucketSet),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, config RateLimitConfig) (bool, error) {
	windows := windowsOf(config)
	if len(windows) == 0 {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	set, ok := l.buckets[key]
	if !ok || len(set.limiters) != len(windows) {
		set = &bucketSet{}
		for _, w := range windows {
			every := rate.Every(w.duration / time.Duration(w.limit))
			set.limiters = append(set.limiters, rate.NewLimiter(every, w.limit))
		}
		l.buckets[key] = set
	}
	set.lastSeen = now

	// Check every bucket before consuming so a denial in one window does
	// not spend a token in another.
	for _, lim := range set.limiters {
		if lim.TokensAt(now) < 1 {
			return false, nil
		}
	}
	for _, lim := range set.limiters {
		lim.AllowN(now, 1)
	}
	return true, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
	return nil
}

func (l *MemoryLimiter) evict(now time.Time) {
	for key, set := range l.buckets {
		if now.Sub(set.lastSeen) > idleEviction {
			delete(l.buckets, key)
		}
	}
}
