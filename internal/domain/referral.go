package domain

import "time"

const ReferralStatusPaid = "paid"

// ReferralReward is the fixed amount credited to a referrer per verified signup.
var ReferralReward = Rupees(100)

type ReferralEntry struct {
	Name     string    `json:"name" dynamodbav:"name"`
	Avatar   string    `json:"avatar" dynamodbav:"avatar"`
	JoinDate time.Time `json:"joinDate" dynamodbav:"join_date"`
	Status   string    `json:"status" dynamodbav:"status"`
	Earnings Money     `json:"earnings" dynamodbav:"earnings"`
}

// Referral is the referral ledger owned by one user (PK: user_id). The item
// holds the running totals; Referrals is loaded from the per-referrer entry
// table and never stored on the item itself.
type Referral struct {
	UserID         string          `json:"userId" dynamodbav:"user_id"`
	ReferralCode   string          `json:"referralCode" dynamodbav:"referral_code"`
	ReferralLink   string          `json:"referralLink" dynamodbav:"referral_link"`
	Referrals      []ReferralEntry `json:"referrals" dynamodbav:"-"`
	TotalReferrals int             `json:"totalReferrals" dynamodbav:"total_referrals"`
	PaidReferrals  int             `json:"paidReferrals" dynamodbav:"paid_referrals"`
	TotalEarnings  Money           `json:"totalEarnings" dynamodbav:"total_earnings"`
	CreatedAt      time.Time       `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" dynamodbav:"updated_at"`
}

// RegistrationCascade is everything written when an OTP is turned into a user.
// The store applies it atomically: either all writes land or none do.
type RegistrationCascade struct {
	Otp      *OtpRecord
	User     *User
	Referral *Referral
	Reward   *RewardCredit // nil when the signup carried no valid referral code
}

// RewardCredit describes the referrer-side writes of a cascade.
type RewardCredit struct {
	ReferrerID  string
	ReferredID  string // the user who just signed up
	Entry       ReferralEntry
	Transaction *WalletTransaction
}

// ReferralUpdate is the realtime payload sent to a referrer after a reward.
type ReferralUpdate struct {
	Entry          ReferralEntry `json:"entry"`
	TotalReferrals int           `json:"totalReferrals"`
	PaidReferrals  int           `json:"paidReferrals"`
	TotalEarnings  Money         `json:"totalEarnings"`
}
