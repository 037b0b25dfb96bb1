package domain

import "time"

const (
	OtpPurposeRegister = "register"
	OtpPurposeReset    = "reset"

	// MaxOtpAttempts is how many codes may be checked against one record.
	MaxOtpAttempts = 5
)

// PendingRegistration is the registration payload held on an OTP record until
// the code is verified. PasswordHash is already bcrypt-hashed.
type PendingRegistration struct {
	Name         string `json:"name" dynamodbav:"name"`
	Email        string `json:"email" dynamodbav:"email"`
	Phone        string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	ReferralCode string `json:"referralCode,omitempty" dynamodbav:"referral_code,omitempty"`
	Role         string `json:"role,omitempty" dynamodbav:"role,omitempty"`
}

// OtpRecord is the single pending code for a target (PK: target). Issuing a new
// code overwrites the record, and OtpID tells the generations apart. Only a
// fingerprint of the code is stored. PurgeAt is a Unix timestamp used as
// DynamoDB TTL.
type OtpRecord struct {
	Target    string               `json:"target" dynamodbav:"target"`
	OtpID     string               `json:"id" dynamodbav:"otp_id"`
	CodeHash  string               `json:"-" dynamodbav:"otp_hash"`
	Purpose   string               `json:"purpose" dynamodbav:"purpose"`
	Attempts  int                  `json:"attempts" dynamodbav:"attempts"`
	ExpiresAt time.Time            `json:"expiresAt" dynamodbav:"expires_at"`
	Used      bool                 `json:"used" dynamodbav:"used"`
	UserData  *PendingRegistration `json:"userData,omitempty" dynamodbav:"user_data,omitempty"`
	PurgeAt   int64                `json:"-" dynamodbav:"purge_at"`
	CreatedAt time.Time            `json:"createdAt" dynamodbav:"created_at"`
}

func (o *OtpRecord) Expired(now time.Time) bool { return o.ExpiresAt.Before(now) }

// Locked reports whether every allowed attempt has been spent.
func (o *OtpRecord) Locked() bool { return o.Attempts >= MaxOtpAttempts }
