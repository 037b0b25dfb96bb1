package shop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-referral-api/internal/domain"
	razorpayinfra "github.com/go-referral-api/internal/infrastructure/razorpay"
	"github.com/go-referral-api/internal/pkg/id"
	"github.com/google/uuid"
)

type PurchaseRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=100"`
}

type VerifyRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
	OrderID           string `json:"orderId" validate:"required"`
}

// Checkout is what the browser needs to open the Razorpay widget.
type Checkout struct {
	OrderID        string       `json:"orderId"`
	GatewayOrderID string       `json:"razorpayOrderId"`
	Amount         domain.Money `json:"amount"`
	Currency       string       `json:"currency"`
	KeyID          string       `json:"key"`
}

type Service interface {
	InitiatePurchase(ctx context.Context, u *domain.User, req PurchaseRequest) (*Checkout, error)
	// VerifyPurchase checks the Razorpay signature, marks the order paid and
	// flags the buyer as a paying user.
	VerifyPurchase(ctx context.Context, u *domain.User, req VerifyRequest) (*domain.Order, error)
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

type orderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID, paymentID string) error
}

type userStore interface {
	MarkPaid(ctx context.Context, userID string) error
}

type paymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, amount domain.Money, receipt string) (*razorpayinfra.GatewayOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

type service struct {
	products productStore
	orders   orderStore
	users    userStore
	gateway  paymentGateway
	now      func() time.Time
}

type ServiceDeps struct {
	ProductRepo productStore
	OrderRepo   orderStore
	UserRepo    userStore
	Razorpay    paymentGateway
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		products: deps.ProductRepo,
		orders:   deps.OrderRepo,
		users:    deps.UserRepo,
		gateway:  deps.Razorpay,
		now:      now,
	}
}

func (s *service) InitiatePurchase(ctx context.Context, u *domain.User, req PurchaseRequest) (*Checkout, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", domain.ErrBadRequest)
	}
	p, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.Enable {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	if p.Stock < qty {
		return nil, fmt.Errorf("only %d left in stock: %w", p.Stock, domain.ErrBadRequest)
	}
	total := p.Price * domain.Money(qty)

	gw, err := s.gateway.CreateOrder(ctx, total, "rcpt_"+strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	o := &domain.Order{
		OrderID:        id.New(),
		UserID:         u.UserID,
		Items:          []domain.OrderItem{{ProductID: p.ProductID, Quantity: qty, Price: p.Price}},
		TotalAmount:    total,
		PaymentMethod:  domain.PaymentMethodRazorpay,
		Status:         domain.OrderStatusPending,
		GatewayOrderID: gw.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orders.Put(ctx, o); err != nil {
		return nil, err
	}
	return &Checkout{
		OrderID:        o.OrderID,
		GatewayOrderID: gw.ID,
		Amount:         total,
		Currency:       gw.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

func (s *service) VerifyPurchase(ctx context.Context, u *domain.User, req VerifyRequest) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != u.UserID {
		return nil, fmt.Errorf("order not found: %w", domain.ErrNotFound)
	}
	if o.GatewayOrderID != req.RazorpayOrderID {
		return nil, fmt.Errorf("payment belongs to another order: %w", domain.ErrBadRequest)
	}
	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, domain.ErrSignatureMismatch
	}
	if o.Status != domain.OrderStatusPending {
		if o.GatewayPaymentID == req.RazorpayPaymentID {
			return o, nil
		}
		return nil, fmt.Errorf("order is already %s: %w", o.Status, domain.ErrConflict)
	}
	if err := s.orders.MarkPaid(ctx, o.OrderID, req.RazorpayPaymentID); err != nil {
		return nil, err
	}
	if !u.IsPaidUser {
		if err := s.users.MarkPaid(ctx, u.UserID); err != nil {
			slog.Warn("could not flag paid user", "user_id", u.UserID, "order_id", o.OrderID, "err", err)
		}
	}
	o.Status = domain.OrderStatusPaid
	o.GatewayPaymentID = req.RazorpayPaymentID
	o.UpdatedAt = s.now().UTC()
	return o, nil
}
