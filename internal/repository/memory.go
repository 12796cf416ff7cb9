package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// sweepInterval bounds how often idle buckets are looked for.
const sweepInterval = time.Minute

type bucket struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen atomic.Int64 // unix nanoseconds
}

// MemoryRateLimiter keeps a token bucket per key in process memory.
// A bucket refills limit tokens per window and holds at most limit.
// Buckets idle for a whole window are full again and get dropped.
type MemoryRateLimiter struct {
	limiters sync.Map
	now      func() time.Time

	mu        sync.Mutex
	lastSweep time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{now: time.Now}
}

func (r *MemoryRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()
	r.sweep(now)

	b := r.getBucket(key, limit, window)
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1), nil
}

func (r *MemoryRateLimiter) getLimiter(key string, limit int, window time.Duration) *rate.Limiter {
	return r.getBucket(key, limit, window).limiter
}

func (r *MemoryRateLimiter) getBucket(key string, limit int, window time.Duration) *bucket {
	if v, ok := r.limiters.Load(key); ok {
		if b, ok := v.(*bucket); ok {
			return b
		}
	}

	if limit <= 0 {
		limit = 1
	}
	every := window / time.Duration(limit)
	b := &bucket{limiter: rate.NewLimiter(rate.Every(every), limit), window: window}
	b.lastSeen.Store(r.now().UnixNano())
	actual, loaded := r.limiters.LoadOrStore(key, b)
	if loaded {
		if actualBucket, ok := actual.(*bucket); ok {
			return actualBucket
		}
	}
	return b
}

func (r *MemoryRateLimiter) sweep(now time.Time) {
	r.mu.Lock()
	if now.Sub(r.lastSweep) < sweepInterval {
		r.mu.Unlock()
		return
	}
	r.lastSweep = now
	r.mu.Unlock()

	r.limiters.Range(func(key, value any) bool {
		b, ok := value.(*bucket)
		if !ok || now.Sub(time.Unix(0, b.lastSeen.Load())) >= b.window {
			r.limiters.Delete(key)
		}
		return true
	})
}
