package auth

import (
	"sync"
	"time"

	"github.com/brandpilot/geo-audit/internal/models"
	"golang.org/x/time/rate"
)

// QuotaFunc returns the daily audit quota of a tier; zero or less means unlimited
type QuotaFunc func(models.Tier) int

// sweepInterval is how often buckets that refilled completely are dropped
const sweepInterval = 10 * time.Minute

// TierLimiter enforces per-caller daily audit quotas. Each caller gets a token
// bucket holding a full day's quota that refills continuously over 24 hours.
// A full bucket is the same as no bucket, so full buckets are evicted.
type TierLimiter struct {
	quota     QuotaFunc
	mu        sync.Mutex
	limiters  map[string]*tierBucket
	lastSweep time.Time
}

type tierBucket struct {
	tier    models.Tier
	limiter *rate.Limiter
}

// NewTierLimiter creates a limiter using quota to size each tier's bucket
func NewTierLimiter(quota QuotaFunc) *TierLimiter {
	return &TierLimiter{
		quota:    quota,
		limiters: make(map[string]*tierBucket),
	}
}

// Allow consumes one audit from the caller's quota and reports whether it was
// available
func (l *TierLimiter) Allow(caller models.Caller) bool {
	return l.AllowAt(caller, time.Now())
}

// AllowAt is Allow at a given instant
func (l *TierLimiter) AllowAt(caller models.Caller, now time.Time) bool {
	quota := l.quota(caller.Tier)
	if quota <= 0 {
		return true
	}

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}
	bucket, ok := l.limiters[caller.ID]
	if !ok || bucket.tier != caller.Tier {
		// A tier change starts a fresh bucket sized for the new tier.
		bucket = &tierBucket{
			tier:    caller.Tier,
			limiter: rate.NewLimiter(rate.Every(24*time.Hour/time.Duration(quota)), quota),
		}
		l.limiters[caller.ID] = bucket
	}
	allowed := bucket.limiter.AllowN(now, 1)
	l.mu.Unlock()

	return allowed
}

// sweep drops buckets that are back at their full quota. Callers must hold mu.
func (l *TierLimiter) sweep(now time.Time) {
	for id, bucket := range l.limiters {
		if bucket.limiter.TokensAt(now) >= float64(bucket.limiter.Burst()) {
			delete(l.limiters, id)
		}
	}
	l.lastSweep = now
}

// Len returns the number of callers currently holding a partly used quota
func (l *TierLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
