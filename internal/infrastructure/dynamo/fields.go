package dynamo

// DynamoDB attribute names used in update expressions across all repos.
const (
	fieldUpdatedAt      = "updated_at"
	fieldCreatedAt      = "created_at"
	fieldUsed           = "used"
	fieldAttempts       = "attempts"
	fieldStatus         = "status"
	fieldPasswordHash   = "password_hash"
	fieldIsPaidUser     = "is_paid_user"
	fieldGoogleSub      = "google_sub"
	fieldBalance        = "balance"
	fieldTotalReferrals = "total_referrals"
	fieldPaidReferrals  = "paid_referrals"
	fieldTotalEarnings  = "total_earnings"
	fieldImageKey       = "image_key"
	fieldPaymentID      = "gateway_payment_id"
)
