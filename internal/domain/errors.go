package domain

import (
	"errors"
	"time"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")

	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrInvalidCode     = errors.New("invalid code format")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrCodeNotFound    = errors.New("verification code not found")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
	ErrIncorrectCode   = errors.New("incorrect verification code")
	ErrDelivery        = errors.New("delivery failed")
)

// DeliveryReason categorises a messaging gateway failure.
type DeliveryReason string

const (
	DeliveryUnconfigured       DeliveryReason = "unconfigured"
	DeliveryInvalidNumber      DeliveryReason = "invalid_number"
	DeliveryChannelUnsupported DeliveryReason = "channel_unsupported"
	DeliveryPermissionDenied   DeliveryReason = "permission_denied"
	DeliveryGeneric            DeliveryReason = "generic"
)

// DeliveryError is returned by the delivery gateway. Err holds the provider error, if any.
type DeliveryError struct {
	Reason DeliveryReason
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return "delivery " + string(e.Reason) + ": " + e.Err.Error()
	}
	return "delivery " + string(e.Reason)
}

func (e *DeliveryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDelivery, e.Err}
	}
	return []error{ErrDelivery}
}

// VerificationError is a user-facing failure of the send or verify flow.
// Message is already localized and safe to return to the caller.
type VerificationError struct {
	Err       error
	Message   string
	Remaining int            // IncorrectCode only
	RetryAt   time.Time      // RateLimited only
	Reason    DeliveryReason // Delivery only
}

func (e *VerificationError) Error() string { return e.Err.Error() + ": " + e.Message }

func (e *VerificationError) Unwrap() error { return e.Err }
