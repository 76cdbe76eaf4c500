package domain

import "time"

// User is the persisted account row, keyed by normalized phone number.
type User struct {
	UserID         string    `json:"id" dynamodbav:"user_id"`
	Phone          string    `json:"phone" dynamodbav:"phone"`
	CountryCode    string    `json:"country_code" dynamodbav:"country_code"`
	PhoneConfirmed bool      `json:"phone_confirmed" dynamodbav:"phone_confirmed"`
	VerifiedAt     time.Time `json:"verified_at" dynamodbav:"verified_at"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}
