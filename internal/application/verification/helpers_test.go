package verification

import (
	"context"
	"time"

	"github.com/shopshap/internal/domain"
	"github.com/shopshap/internal/infrastructure/memory"
	"github.com/stretchr/testify/mock"
)

type fakeClock struct{ t time.Time }

func newClock() *fakeClock { return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)} }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newCodeStore(clk *fakeClock) (*CodeStore, *memory.Store[domain.OtpRecord]) {
	backend := memory.NewStore[domain.OtpRecord](clk.Now)
	return NewCodeStore(backend, 10*time.Minute, 3, clk.Now), backend
}

func newLimiter(clk *fakeClock) *RateLimiter {
	return NewRateLimiter(memory.NewStore[domain.RateLimitRecord](clk.Now), 15*time.Minute, 3, clk.Now)
}

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Send(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

type mockUserSync struct{ mock.Mock }

func (m *mockUserSync) UpsertVerified(ctx context.Context, u *domain.VerifiedUser) error {
	return m.Called(ctx, u).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) SignVerified(phone, country string) (string, error) {
	args := m.Called(phone, country)
	return args.String(0), args.Error(1)
}
