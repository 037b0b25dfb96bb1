package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	UserStatusVerified = "verified"
	UserStatusDisabled = "disabled"
)

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	Phone        string    `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	ReferralCode string    `json:"referralCode" dynamodbav:"referral_code"`
	ReferredBy   string    `json:"referredBy,omitempty" dynamodbav:"referred_by,omitempty"`
	Role         string    `json:"role" dynamodbav:"role"`
	Status       string    `json:"status" dynamodbav:"status"`
	IsPaidUser   bool      `json:"isPaidUser" dynamodbav:"is_paid_user"`
	GoogleSub    string    `json:"-" dynamodbav:"google_sub,omitempty"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// Disabled reports whether an admin has switched the account off.
func (u *User) Disabled() bool { return u.Status == UserStatusDisabled }

// UserSummary is the public shape returned by the auth endpoints.
type UserSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ReferralCode string `json:"referralCode,omitempty"`
	Role         string `json:"role"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:           u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		ReferralCode: u.ReferralCode,
		Role:         u.Role,
	}
}

type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,fullname"`
	Phone  *string `json:"phone"`
	Role   *string `json:"role" validate:"omitempty,oneof=user admin"`
	Status *string `json:"status" validate:"omitempty,oneof=verified disabled"`
}
