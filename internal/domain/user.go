package domain

import "time"

type User struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	PhoneNumber string    `json:"phone_number" dynamodbav:"phone_number"`
	FullName    *string   `json:"full_name" dynamodbav:"full_name"`
	Role        string    `json:"role" dynamodbav:"role"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// PhoneNumberClaim reserves a phone number for exactly one user.
// PK: phone_number.
type PhoneNumberClaim struct {
	PhoneNumber string `dynamodbav:"phone_number"`
	UserID      string `dynamodbav:"user_id"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
}
