package domain

import "time"

const (
	TxnSourceReferral = "referral"
	TxnSourcePhonePe  = "phonepe"
	TxnSourceAdmin    = "admin"
)

type Wallet struct {
	UserID    string    `json:"userId" dynamodbav:"user_id"`
	Balance   Money     `json:"balance" dynamodbav:"balance"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// WalletTransaction is an append-only ledger line. TxnID doubles as the
// idempotency key: a credit with an existing TxnID is rejected by the store.
type WalletTransaction struct {
	TxnID       string    `json:"id" dynamodbav:"txn_id"`
	UserID      string    `json:"userId" dynamodbav:"user_id"`
	Amount      Money     `json:"amount" dynamodbav:"amount"`
	Source      string    `json:"source" dynamodbav:"source"`
	Description string    `json:"description" dynamodbav:"description"`
	Reference   string    `json:"reference,omitempty" dynamodbav:"reference,omitempty"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
}

const (
	TopUpStatusPending = "pending"
	TopUpStatusSuccess = "success"
	TopUpStatusFailed  = "failed"
)

// TopUp is a wallet funding intent created before redirecting to PhonePe.
// TopUpID is sent to PhonePe as the merchant transaction id.
type TopUp struct {
	TopUpID   string    `json:"id" dynamodbav:"topup_id"`
	UserID    string    `json:"userId" dynamodbav:"user_id"`
	Amount    Money     `json:"amount" dynamodbav:"amount"`
	Provider  string    `json:"provider" dynamodbav:"provider"`
	Status    string    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// BalanceUpdate is the realtime payload sent after a wallet credit.
type BalanceUpdate struct {
	Balance     Money              `json:"walletBalance"`
	Transaction *WalletTransaction `json:"transaction"`
}

type AddMoneyRequest struct {
	Amount Money `json:"amount" validate:"gt=0"`
}

type CreditRequest struct {
	Amount      Money  `json:"amount" validate:"gt=0"`
	Description string `json:"description" validate:"required,max=200"`
	Reference   string `json:"reference"`
}
