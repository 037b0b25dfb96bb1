package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/infrastructure/phonepe"
	"github.com/go-referral-api/internal/infrastructure/realtime"
	"github.com/go-referral-api/internal/pkg/id"
	"github.com/google/uuid"
)

const (
	defaultTxnLimit = 50
	maxTxnLimit     = 200
)

type TopUpResult struct {
	PaymentURL string
	OrderID    string
}

type Service interface {
	Balance(ctx context.Context, userID string) (domain.Money, error)
	Transactions(ctx context.Context, userID string, limit int) ([]domain.WalletTransaction, error)
	// Credit appends a ledger line and raises the balance atomically.
	Credit(ctx context.Context, userID, source string, req domain.CreditRequest) (*domain.WalletTransaction, error)
	InitiateTopUp(ctx context.Context, u *domain.User, amount domain.Money) (*TopUpResult, error)
	// HandlePhonePeCallback settles a top-up from PhonePe's server-to-server
	// notification. Replayed callbacks for a settled top-up are accepted as no-ops.
	HandlePhonePeCallback(ctx context.Context, body []byte, xVerify string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type walletStore interface {
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	Credit(ctx context.Context, txn *domain.WalletTransaction) error
	ListTransactions(ctx context.Context, userID string, limit int32) ([]domain.WalletTransaction, error)
}

type topUpStore interface {
	Put(ctx context.Context, t *domain.TopUp) error
	Get(ctx context.Context, topUpID string) (*domain.TopUp, error)
	Complete(ctx context.Context, topUpID string, txn *domain.WalletTransaction) error
	Fail(ctx context.Context, topUpID string, at time.Time) error
}

type paymentGateway interface {
	Pay(ctx context.Context, pr phonepe.PayRequest) (string, error)
	ParseCallback(body []byte, xVerify string) (*phonepe.CallbackResult, error)
}

type broadcaster interface {
	Publish(ctx context.Context, userID string, ev realtime.Event) error
}

type service struct {
	users   userStore
	wallets walletStore
	topUps  topUpStore
	gateway paymentGateway
	events  broadcaster
	now     func() time.Time
}

type ServiceDeps struct {
	UserRepo    userStore
	WalletRepo  walletStore
	TopUpRepo   topUpStore
	PhonePe     paymentGateway
	Broadcaster broadcaster
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:   deps.UserRepo,
		wallets: deps.WalletRepo,
		topUps:  deps.TopUpRepo,
		gateway: deps.PhonePe,
		events:  deps.Broadcaster,
		now:     now,
	}
}

func (s *service) Balance(ctx context.Context, userID string) (domain.Money, error) {
	w, err := s.wallets.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

func (s *service) Transactions(ctx context.Context, userID string, limit int) ([]domain.WalletTransaction, error) {
	if limit < 1 || limit > maxTxnLimit {
		limit = defaultTxnLimit
	}
	txns, err := s.wallets.ListTransactions(ctx, userID, int32(limit))
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []domain.WalletTransaction{}
	}
	return txns, nil
}

func (s *service) Credit(ctx context.Context, userID, source string, req domain.CreditRequest) (*domain.WalletTransaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	txn := &domain.WalletTransaction{
		TxnID:       id.New(),
		UserID:      userID,
		Amount:      req.Amount,
		Source:      source,
		Description: strings.TrimSpace(req.Description),
		Reference:   req.Reference,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.wallets.Credit(ctx, txn); err != nil {
		return nil, err
	}
	s.publishBalance(ctx, txn)
	return txn, nil
}

func (s *service) InitiateTopUp(ctx context.Context, u *domain.User, amount domain.Money) (*TopUpResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}
	now := s.now().UTC()
	t := &domain.TopUp{
		TopUpID:   newTopUpID(),
		UserID:    u.UserID,
		Amount:    amount,
		Provider:  domain.TxnSourcePhonePe,
		Status:    domain.TopUpStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.topUps.Put(ctx, t); err != nil {
		return nil, err
	}
	url, err := s.gateway.Pay(ctx, phonepe.PayRequest{
		MerchantTransactionID: t.TopUpID,
		MerchantUserID:        u.UserID,
		Amount:                amount,
		MobileNumber:          u.Phone,
	})
	if err != nil {
		if ferr := s.topUps.Fail(ctx, t.TopUpID, s.now().UTC()); ferr != nil {
			slog.Warn("could not mark topup failed", "topup_id", t.TopUpID, "err", ferr)
		}
		return nil, err
	}
	return &TopUpResult{PaymentURL: url, OrderID: t.TopUpID}, nil
}

// newTopUpID returns a PhonePe merchant transaction id: alphanumeric, under 38 chars.
func newTopUpID() string {
	return "TU" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *service) HandlePhonePeCallback(ctx context.Context, body []byte, xVerify string) error {
	res, err := s.gateway.ParseCallback(body, xVerify)
	if err != nil {
		return err
	}
	t, err := s.topUps.Get(ctx, res.MerchantTransactionID)
	if err != nil {
		return err
	}
	if t.Status != domain.TopUpStatusPending {
		return nil
	}
	now := s.now().UTC()
	if !res.Paid() {
		slog.Info("phonepe payment not completed", "topup_id", t.TopUpID, "code", res.Code, "state", res.State)
		return ignoreSettled(s.topUps.Fail(ctx, t.TopUpID, now))
	}
	if res.Amount != t.Amount {
		slog.Warn("phonepe amount mismatch", "topup_id", t.TopUpID, "want", t.Amount.String(), "got", res.Amount.String())
		return fmt.Errorf("paid amount does not match top-up: %w", domain.ErrBadRequest)
	}
	// The top-up id doubles as the ledger txn id so a credit can land only once.
	txn := &domain.WalletTransaction{
		TxnID:       t.TopUpID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Source:      domain.TxnSourcePhonePe,
		Description: "Wallet top-up via PhonePe",
		Reference:   res.TransactionID,
		CreatedAt:   now,
	}
	if err := s.topUps.Complete(ctx, t.TopUpID, txn); err != nil {
		return ignoreSettled(err)
	}
	s.publishBalance(ctx, txn)
	return nil
}

func ignoreSettled(err error) error {
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}

func (s *service) publishBalance(ctx context.Context, txn *domain.WalletTransaction) {
	if s.events == nil {
		return
	}
	w, err := s.wallets.Get(ctx, txn.UserID)
	if err != nil {
		slog.Warn("could not reload wallet", "user_id", txn.UserID, "err", err)
		return
	}
	ev, err := realtime.NewEvent(realtime.EventWalletUpdate, domain.BalanceUpdate{Balance: w.Balance, Transaction: txn})
	if err == nil {
		err = s.events.Publish(ctx, txn.UserID, ev)
	}
	if err != nil {
		slog.Warn("wallet update not published", "user_id", txn.UserID, "err", err)
	}
}
