package domain

import "time"

// PendingVerification binds a phone number to a one-time code and the
// draft user data collected when the code was requested.
// PK: phone_number. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type PendingVerification struct {
	PhoneNumber string    `json:"phone_number" dynamodbav:"phone_number"`
	Code        string    `json:"code" dynamodbav:"code"`
	UserID      string    `json:"user_id,omitempty" dynamodbav:"user_id,omitempty"` // set by the login flow
	FullName    *string   `json:"full_name,omitempty" dynamodbav:"full_name,omitempty"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt   int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Expired reports whether the entry is past its expiry at now.
func (v *PendingVerification) Expired(now time.Time) bool {
	return v.ExpiresAt <= now.Unix()
}
