package domain

import "time"

// OTPVerification is the single live one-time code for an email.
// PK: email. TTL is the DynamoDB expiry attribute (Unix seconds of ExpiresAt).
type OTPVerification struct {
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	Verified  bool      `json:"verified" dynamodbav:"verified"`
	Attempts  int       `json:"-" dynamodbav:"attempts"` // failed guesses against Code
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"expires_at"`
	TTL       int64     `json:"-" dynamodbav:"ttl"`
}

// Expired reports whether the code is past its expiry at now.
func (v *OTPVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// RevokedToken blacklists a refresh token by its jti until it would expire anyway.
type RevokedToken struct {
	JTI       string    `dynamodbav:"jti"`
	UserID    string    `dynamodbav:"user_id"`
	ExpiresAt time.Time `dynamodbav:"expires_at"`
	TTL       int64     `dynamodbav:"ttl"`
}
