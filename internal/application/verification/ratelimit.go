package verification

import (
	"context"
	"sync"
	"time"

	"github.com/shopshap/internal/domain"
)

// Decision is the limiter state after TryConsume.
type Decision struct {
	Allowed bool
	Count   int
	ResetAt time.Time
}

// RateLimiter bounds code requests per phone number with a fixed window that
// restarts on the first request after the previous one ended.
type RateLimiter struct {
	mu     sync.Mutex
	store  Store[domain.RateLimitRecord]
	window time.Duration
	max    int
	now    func() time.Time
}

func NewRateLimiter(store Store[domain.RateLimitRecord], window time.Duration, max int, now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{store: store, window: window, max: max, now: now}
}

// TryConsume takes one slot for phone if any remain. A blocked call leaves
// the record untouched.
func (l *RateLimiter) TryConsume(ctx context.Context, phone string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok, err := l.store.Get(ctx, phone)
	if err != nil {
		return Decision{}, err
	}
	if !ok || now.After(rec.WindowResetAt) {
		rec = domain.RateLimitRecord{Count: 1, WindowResetAt: now.Add(l.window)}
	} else if rec.Count < l.max {
		rec.Count++
	} else {
		return Decision{Allowed: false, Count: rec.Count, ResetAt: rec.WindowResetAt}, nil
	}
	if err := l.store.Set(ctx, phone, rec, rec.WindowResetAt.Sub(now)+retentionGrace); err != nil {
		return Decision{}, err
	}
	return Decision{Allowed: true, Count: rec.Count, ResetAt: rec.WindowResetAt}, nil
}

func (l *RateLimiter) Snapshot(ctx context.Context) (map[string]domain.RateLimitRecord, error) {
	return l.store.Snapshot(ctx)
}
