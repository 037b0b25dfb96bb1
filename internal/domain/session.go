package domain

import "time"

// Session is one entry of a user's token allow-list. PK: token_hash.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type Session struct {
	TokenHash string    `json:"-" dynamodbav:"token_hash"`
	UserID    string    `json:"userId" dynamodbav:"user_id"`
	ExpiresAt int64     `json:"expiresAt" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
}
