package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/shopshap/internal/domain"
)

// Status is the result of checking a submitted code.
type Status int

const (
	StatusSuccess Status = iota
	StatusNotFound
	StatusExpired
	StatusTooManyAttempts
	StatusIncorrect
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotFound:
		return "not_found"
	case StatusExpired:
		return "expired"
	case StatusTooManyAttempts:
		return "too_many_attempts"
	case StatusIncorrect:
		return "incorrect"
	}
	return "unknown"
}

// Outcome of CodeStore.Verify. Remaining is set for StatusIncorrect,
// VerifiedAt for StatusSuccess.
type Outcome struct {
	Status     Status
	Remaining  int
	VerifiedAt time.Time
}

// CodeStore owns the lifecycle of one-time codes: at most one live code per
// phone number, removed on success, expiry or exhaustion.
type CodeStore struct {
	mu          sync.Mutex
	store       Store[domain.OtpRecord]
	ttl         time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewCodeStore(store Store[domain.OtpRecord], ttl time.Duration, maxAttempts int, now func() time.Time) *CodeStore {
	if now == nil {
		now = time.Now
	}
	return &CodeStore{store: store, ttl: ttl, maxAttempts: maxAttempts, now: now}
}

// Create issues a new code for phone, replacing any previous one.
// Codes are drawn from 100000-999999, so there is never a leading zero.
func (c *CodeStore) Create(ctx context.Context, phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	rec := domain.OtpRecord{
		Code:      code,
		ExpiresAt: now.Add(c.ttl),
		Attempts:  0,
		CreatedAt: now,
	}
	if err := c.store.Set(ctx, phone, rec, c.ttl+retentionGrace); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks submitted against the live code for phone.
func (c *CodeStore) Verify(ctx context.Context, phone, submitted string) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok, err := c.store.Get(ctx, phone)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Status: StatusNotFound}, nil
	}
	now := c.now()
	if now.After(rec.ExpiresAt) {
		return Outcome{Status: StatusExpired}, c.store.Delete(ctx, phone)
	}
	if rec.Attempts >= c.maxAttempts {
		return Outcome{Status: StatusTooManyAttempts}, c.store.Delete(ctx, phone)
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(submitted)), []byte(rec.Code)) == 1 {
		return Outcome{Status: StatusSuccess, VerifiedAt: now}, c.store.Delete(ctx, phone)
	}

	rec.Attempts++
	if rec.Attempts >= c.maxAttempts {
		return Outcome{Status: StatusTooManyAttempts}, c.store.Delete(ctx, phone)
	}
	if err := c.store.Set(ctx, phone, rec, rec.ExpiresAt.Sub(now)+retentionGrace); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: StatusIncorrect, Remaining: c.maxAttempts - rec.Attempts}, nil
}

func (c *CodeStore) Snapshot(ctx context.Context) (map[string]domain.OtpRecord, error) {
	return c.store.Snapshot(ctx)
}
