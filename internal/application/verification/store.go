package verification

import (
	"context"
	"time"
)

// Store is the key-value backend for codes and rate-limit counters.
// Get reports ok=false for missing or TTL-evicted keys.
type Store[T any] interface {
	Get(ctx context.Context, key string) (value T, ok bool, err error)
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Snapshot(ctx context.Context) (map[string]T, error)
}

// retentionGrace keeps records in the backend past their logical deadline so
// lazy checks still observe them as expired instead of missing.
const retentionGrace = 5 * time.Minute
