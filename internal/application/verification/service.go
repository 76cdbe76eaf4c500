package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/shopshap/internal/domain"
	"github.com/shopshap/internal/pkg/phone"
)

// Gateway delivers a message body to a normalized phone number.
type Gateway interface {
	Send(ctx context.Context, to, body string) (messageID string, err error)
}

// UserSyncer persists the verified user. Failures never undo a verification.
type UserSyncer interface {
	UpsertVerified(ctx context.Context, u *domain.VerifiedUser) error
}

// TokenSigner issues a token attesting that phone was verified.
type TokenSigner interface {
	SignVerified(phone, country string) (string, error)
}

type SendResult struct {
	Phone     string
	Country   *phone.Country
	Message   string
	ExpiresAt time.Time
	MessageID string
}

type VerifyResult struct {
	Message string
	User    domain.VerifiedUser
	Token   string
}

// DebugSnapshot exposes the raw store contents for development builds.
type DebugSnapshot struct {
	Codes      map[string]domain.OtpRecord       `json:"codes"`
	RateLimits map[string]domain.RateLimitRecord `json:"rate_limits"`
}

type Service interface {
	SendCode(ctx context.Context, rawPhone string) (*SendResult, error)
	VerifyCode(ctx context.Context, rawPhone, code string) (*VerifyResult, error)
	Debug(ctx context.Context) (*DebugSnapshot, error)
}

// ServiceDeps wires the service. UserSync and Tokens are optional.
type ServiceDeps struct {
	Codes          *CodeStore
	Limiter        *RateLimiter
	Gateway        Gateway
	UserSync       UserSyncer
	Tokens         TokenSigner
	CodeTTL        time.Duration
	GatewayTimeout time.Duration
	Now            func() time.Time
	Logger         *slog.Logger
}

type service struct {
	ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &service{ServiceDeps: deps}
}

func (s *service) SendCode(ctx context.Context, rawPhone string) (*SendResult, error) {
	if strings.TrimSpace(rawPhone) == "" {
		return nil, &domain.VerificationError{Err: domain.ErrInvalidPhone, Message: "Le numéro de téléphone est requis."}
	}
	p := phone.Format(rawPhone)
	if !p.Valid {
		return nil, &domain.VerificationError{Err: domain.ErrInvalidPhone, Message: p.Error}
	}
	log := s.Logger.With("phone", p.Formatted, "country", p.Country.Code)

	dec, err := s.Limiter.TryConsume(ctx, p.Formatted)
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	if !dec.Allowed {
		wait := int(math.Ceil(dec.ResetAt.Sub(s.Now()).Minutes()))
		if wait < 1 {
			wait = 1
		}
		log.Info("verification send blocked", "reset_at", dec.ResetAt)
		return nil, &domain.VerificationError{
			Err:     domain.ErrRateLimited,
			Message: fmt.Sprintf("Trop de demandes. Veuillez réessayer dans %d minute(s).", wait),
			RetryAt: dec.ResetAt,
		}
	}

	code, err := s.Codes.Create(ctx, p.Formatted)
	if err != nil {
		return nil, fmt.Errorf("create code: %w", err)
	}
	if dec.Count > 1 {
		log.Info("previous verification code superseded", "request", dec.Count)
	}

	body := ComposeMessage(code, int(s.CodeTTL.Minutes()), p.Country)

	sendCtx := ctx
	if s.GatewayTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.GatewayTimeout)
		defer cancel()
	}
	// The code stays valid when delivery fails; a resend replaces it.
	msgID, err := s.Gateway.Send(sendCtx, p.Formatted, body)
	if err != nil {
		var de *domain.DeliveryError
		if !errors.As(err, &de) {
			de = &domain.DeliveryError{Reason: domain.DeliveryGeneric, Err: err}
		}
		log.Warn("verification code delivery failed", "reason", de.Reason, "err", err)
		return nil, &domain.VerificationError{Err: de, Message: deliveryMessage(de.Reason), Reason: de.Reason}
	}

	log.Info("verification code sent", "message_id", msgID)
	return &SendResult{
		Phone:     p.Formatted,
		Country:   p.Country,
		Message:   fmt.Sprintf("Code de vérification envoyé au %s (%s %s).", p.Formatted, p.Country.Flag, p.Country.Name),
		ExpiresAt: s.Now().Add(s.CodeTTL),
		MessageID: msgID,
	}, nil
}

func (s *service) VerifyCode(ctx context.Context, rawPhone, code string) (*VerifyResult, error) {
	if strings.TrimSpace(rawPhone) == "" {
		return nil, &domain.VerificationError{Err: domain.ErrInvalidPhone, Message: "Le numéro de téléphone est requis."}
	}
	if !isSixDigits(strings.TrimSpace(code)) {
		return nil, &domain.VerificationError{Err: domain.ErrInvalidCode, Message: "Le code doit contenir exactement 6 chiffres."}
	}
	p := phone.Format(rawPhone)
	if !p.Valid {
		return nil, &domain.VerificationError{Err: domain.ErrInvalidPhone, Message: p.Error}
	}
	log := s.Logger.With("phone", p.Formatted, "country", p.Country.Code)

	out, err := s.Codes.Verify(ctx, p.Formatted, code)
	if err != nil {
		return nil, fmt.Errorf("verify code: %w", err)
	}
	log.Info("verification attempt", "status", out.Status.String())

	switch out.Status {
	case StatusNotFound:
		return nil, &domain.VerificationError{Err: domain.ErrCodeNotFound, Message: "Aucun code en attente pour ce numéro. Veuillez demander un nouveau code."}
	case StatusExpired:
		return nil, &domain.VerificationError{Err: domain.ErrCodeExpired, Message: "Le code a expiré. Veuillez demander un nouveau code."}
	case StatusTooManyAttempts:
		return nil, &domain.VerificationError{Err: domain.ErrTooManyAttempts, Message: "Trop de tentatives incorrectes. Veuillez demander un nouveau code."}
	case StatusIncorrect:
		return nil, &domain.VerificationError{
			Err:       domain.ErrIncorrectCode,
			Message:   fmt.Sprintf("Code incorrect. Il vous reste %d tentative(s).", out.Remaining),
			Remaining: out.Remaining,
		}
	}

	user := domain.VerifiedUser{Phone: p.Formatted, CountryCode: p.Country.Code, VerifiedAt: out.VerifiedAt}
	if s.UserSync != nil {
		if err := s.UserSync.UpsertVerified(ctx, &user); err != nil {
			log.Warn("failed to sync verified user", "err", err)
		}
	}
	res := &VerifyResult{Message: "Numéro vérifié avec succès.", User: user}
	if s.Tokens != nil {
		tok, err := s.Tokens.SignVerified(user.Phone, user.CountryCode)
		if err != nil {
			log.Warn("failed to sign verification token", "err", err)
		} else {
			res.Token = tok
		}
	}
	return res, nil
}

func (s *service) Debug(ctx context.Context) (*DebugSnapshot, error) {
	codes, err := s.Codes.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	limits, err := s.Limiter.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugSnapshot{Codes: codes, RateLimits: limits}, nil
}

func deliveryMessage(r domain.DeliveryReason) string {
	switch r {
	case domain.DeliveryUnconfigured:
		return "Le service d'envoi de messages n'est pas configuré. Veuillez réessayer plus tard."
	case domain.DeliveryInvalidNumber:
		return "Ce numéro ne peut pas recevoir de messages. Vérifiez le numéro saisi."
	case domain.DeliveryChannelUnsupported:
		return "Ce numéro n'est pas joignable par ce canal de messagerie."
	case domain.DeliveryPermissionDenied:
		return "L'envoi de messages vers ce numéro n'est pas autorisé."
	}
	return "Échec de l'envoi du code. Veuillez réessayer."
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
