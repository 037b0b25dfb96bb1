package razorpayinfra

import (
	"context"
	"fmt"

	"github.com/go-referral-api/internal/domain"
	"github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

const currencyINR = "INR"

// GatewayOrder is the subset of a Razorpay order the checkout needs.
type GatewayOrder struct {
	ID       string
	Amount   domain.Money
	Currency string
}

type Client struct {
	api    *razorpay.Client
	keyID  string
	secret string
}

func NewClient(keyID, secret string) *Client {
	return &Client{api: razorpay.NewClient(keyID, secret), keyID: keyID, secret: secret}
}

// KeyID is the public key the browser checkout is opened with.
func (c *Client) KeyID() string { return c.keyID }

// CreateOrder registers an order for amount (already in paise) with Razorpay.
// The SDK has no context support; ctx is checked before the call.
func (c *Client) CreateOrder(ctx context.Context, amount domain.Money, receipt string) (*GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := c.api.Order.Create(map[string]interface{}{
		"amount":   int64(amount),
		"currency": currencyINR,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %v: %w", err, domain.ErrGateway)
	}
	return parseOrder(out)
}

// VerifyPaymentSignature checks the checkout callback signature,
// HMAC-SHA256(orderID + "|" + paymentID) keyed with the API secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, signature, c.secret)
}

func parseOrder(m map[string]interface{}) (*GatewayOrder, error) {
	orderID, _ := m["id"].(string)
	if orderID == "" {
		return nil, fmt.Errorf("razorpay order without id: %w", domain.ErrGateway)
	}
	currency, _ := m["currency"].(string)
	var amount domain.Money
	switch v := m["amount"].(type) {
	case float64:
		amount = domain.Money(v)
	case int64:
		amount = domain.Money(v)
	case int:
		amount = domain.Money(v)
	}
	return &GatewayOrder{ID: orderID, Amount: amount, Currency: currency}, nil
}
