package razorpayinfra

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	c := NewClient("rzp_test_key", "topsecret")

	assert.True(t, c.VerifyPaymentSignature("order_1", "pay_1", sign("topsecret", "order_1", "pay_1")))
	assert.False(t, c.VerifyPaymentSignature("order_1", "pay_2", sign("topsecret", "order_1", "pay_1")))
	assert.False(t, c.VerifyPaymentSignature("order_1", "pay_1", sign("other", "order_1", "pay_1")))
}

func TestParseOrder(t *testing.T) {
	o, err := parseOrder(map[string]interface{}{"id": "order_1", "amount": float64(49900), "currency": "INR"})
	require.NoError(t, err)
	assert.Equal(t, "order_1", o.ID)
	assert.Equal(t, domain.Money(49900), o.Amount)
	assert.Equal(t, "INR", o.Currency)

	_, err = parseOrder(map[string]interface{}{"error": "bad"})
	assert.ErrorIs(t, err, domain.ErrGateway)
}

func TestKeyID(t *testing.T) {
	assert.Equal(t, "rzp_test_key", NewClient("rzp_test_key", "s").KeyID())
}
