package http

import (
	"context"
	"io"
	"time"

	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/infrastructure/google"
	jwtinfra "github.com/go-referral-api/internal/infrastructure/jwt"
	"github.com/go-referral-api/internal/infrastructure/phonepe"
	razorpayinfra "github.com/go-referral-api/internal/infrastructure/razorpay"
	"github.com/go-referral-api/internal/infrastructure/realtime"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByReferralCode(ctx context.Context, code string) (*domain.User, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SetPasswordHash(ctx context.Context, userID, hash string) error
	MarkPaid(ctx context.Context, userID string) error
	LinkGoogle(ctx context.Context, userID, sub string) error
	Disable(ctx context.Context, userID string) error
	// ScanPage pages through every user in table order.
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Count(ctx context.Context, paidOnly bool) (int, error)
	CreatedInYear(ctx context.Context, year int) ([]time.Time, error)
}

// OtpRepository holds at most one pending code per target.
type OtpRepository interface {
	Put(ctx context.Context, o *domain.OtpRecord) error
	Get(ctx context.Context, target string) (*domain.OtpRecord, error)
	RecordAttempt(ctx context.Context, target, otpID string, limit int) error
	MarkUsed(ctx context.Context, target, otpID string) error
}

// SessionRepository is the token allow-list, keyed by token fingerprint.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, tokenHash string) (*domain.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type ReferralRepository interface {
	Get(ctx context.Context, userID string) (*domain.Referral, error)
}

// RegistrationRepository commits the whole OTP verification cascade at once.
type RegistrationRepository interface {
	Commit(ctx context.Context, c *domain.RegistrationCascade) error
}

type WalletRepository interface {
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	Credit(ctx context.Context, txn *domain.WalletTransaction) error
	ListTransactions(ctx context.Context, userID string, limit int32) ([]domain.WalletTransaction, error)
}

type TopUpRepository interface {
	Put(ctx context.Context, t *domain.TopUp) error
	Get(ctx context.Context, topUpID string) (*domain.TopUp, error)
	Complete(ctx context.Context, topUpID string, txn *domain.WalletTransaction) error
	Fail(ctx context.Context, topUpID string, at time.Time) error
}

type ProductRepository interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	List(ctx context.Context, enabledOnly bool) ([]domain.Product, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	SetImageKey(ctx context.Context, productID, key string) error
	SoftDelete(ctx context.Context, productID string) error
}

type OrderRepository interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	All(ctx context.Context) ([]domain.Order, error)
	CreatedInYear(ctx context.Context, year int) ([]time.Time, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	MarkPaid(ctx context.Context, orderID, paymentID string) error
	Delete(ctx context.Context, orderID string) error
}

type SettingRepository interface {
	Put(ctx context.Context, s *domain.Setting) error
	Get(ctx context.Context, key string) (*domain.Setting, error)
	List(ctx context.Context) ([]domain.Setting, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type TokenProvider interface {
	Sign(userID, role string) (string, time.Time, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type Mailer interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type GoogleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

// PurchaseGateway is Razorpay: orders for shop checkouts.
type PurchaseGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount domain.Money, receipt string) (*razorpayinfra.GatewayOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// TopUpGateway is PhonePe: redirect payments for wallet top-ups.
type TopUpGateway interface {
	Pay(ctx context.Context, pr phonepe.PayRequest) (string, error)
	ParseCallback(body []byte, xVerify string) (*phonepe.CallbackResult, error)
}

// Deps holds all infrastructure dependencies for the router. SMSSender and
// Google may be nil to disable those features.
type Deps struct {
	UserRepo         UserRepository
	OtpRepo          OtpRepository
	SessionRepo      SessionRepository
	ReferralRepo     ReferralRepository
	RegistrationRepo RegistrationRepository
	WalletRepo       WalletRepository
	TopUpRepo        TopUpRepository
	ProductRepo      ProductRepository
	OrderRepo        OrderRepository
	SettingRepo      SettingRepository
	Objects          ObjectStore
	JWTProvider      TokenProvider
	Mailer           Mailer
	SMSSender        SMSSender
	Google           GoogleVerifier
	Razorpay         PurchaseGateway
	PhonePe          TopUpGateway
	Broadcaster      realtime.Broadcaster
}
