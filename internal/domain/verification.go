package domain

import "time"

// OtpRecord is the single live one-time code for a normalized phone number.
type OtpRecord struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// RateLimitRecord counts send requests for a phone number in the current window.
type RateLimitRecord struct {
	Count         int       `json:"count"`
	WindowResetAt time.Time `json:"window_reset_at"`
}

// VerifiedUser is returned after a successful verification.
type VerifiedUser struct {
	Phone       string    `json:"phone"`
	CountryCode string    `json:"country"`
	VerifiedAt  time.Time `json:"verified_at"`
}
