package phonepe

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-referral-api/internal/domain"
)

const (
	productionURL = "https://api.phonepe.com/apis/hermes"
	sandboxURL    = "https://api-preprod.phonepe.com/apis/pg-sandbox"
	payPath       = "/pg/v1/pay"
)

type Config struct {
	MerchantID  string
	SaltKey     string
	SaltIndex   string
	Env         string // "production" or anything else for sandbox
	RedirectURL string
	CallbackURL string
}

// Client talks to the PhonePe standard checkout API.
type Client struct {
	cfg        Config
	APIURL     string
	HTTPClient *http.Client
}

func NewClient(cfg Config) *Client {
	apiURL := sandboxURL
	if cfg.Env == "production" {
		apiURL = productionURL
	}
	return &Client{
		cfg:        cfg,
		APIURL:     apiURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type PayRequest struct {
	MerchantTransactionID string
	MerchantUserID        string
	Amount                domain.Money
	MobileNumber          string
}

type payPayload struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl"`
	RedirectMode          string            `json:"redirectMode"`
	CallbackURL           string            `json:"callbackUrl"`
	MobileNumber          string            `json:"mobileNumber,omitempty"`
	PaymentInstrument     paymentInstrument `json:"paymentInstrument"`
}

type paymentInstrument struct {
	Type string `json:"type"`
}

type payResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		InstrumentResponse struct {
			RedirectInfo struct {
				URL string `json:"url"`
			} `json:"redirectInfo"`
		} `json:"instrumentResponse"`
	} `json:"data"`
}

// Pay creates a checkout session and returns the URL the user is sent to.
func (c *Client) Pay(ctx context.Context, pr PayRequest) (string, error) {
	payload, err := json.Marshal(payPayload{
		MerchantID:            c.cfg.MerchantID,
		MerchantTransactionID: pr.MerchantTransactionID,
		MerchantUserID:        pr.MerchantUserID,
		Amount:                int64(pr.Amount),
		RedirectURL:           c.cfg.RedirectURL,
		RedirectMode:          "REDIRECT",
		CallbackURL:           c.cfg.CallbackURL,
		MobileNumber:          pr.MobileNumber,
		PaymentInstrument:     paymentInstrument{Type: "PAY_PAGE"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+payPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-VERIFY", c.Checksum(encoded+payPath))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("phonepe request failed: %v: %w", err, domain.ErrGateway)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out payResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("phonepe returned status %d: %w", resp.StatusCode, domain.ErrGateway)
	}
	if resp.StatusCode >= 400 || !out.Success || out.Data.InstrumentResponse.RedirectInfo.URL == "" {
		return "", fmt.Errorf("phonepe rejected payment (%s: %s): %w", out.Code, out.Message, domain.ErrGateway)
	}
	return out.Data.InstrumentResponse.RedirectInfo.URL, nil
}

// Checksum is PhonePe's X-VERIFY value: sha256(data + saltKey) in hex,
// followed by "###" and the salt index.
func (c *Client) Checksum(data string) string {
	sum := sha256.Sum256([]byte(data + c.cfg.SaltKey))
	return hex.EncodeToString(sum[:]) + "###" + c.cfg.SaltIndex
}

// CallbackResult is the decoded server-to-server payment notification.
type CallbackResult struct {
	Success               bool
	Code                  string
	MerchantTransactionID string
	TransactionID         string
	Amount                domain.Money
	State                 string
}

// Paid reports whether PhonePe considers the payment complete.
func (r *CallbackResult) Paid() bool {
	return r.Success && r.Code == "PAYMENT_SUCCESS"
}

type callbackEnvelope struct {
	Response string `json:"response"`
}

type callbackBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Data    struct {
		MerchantTransactionID string `json:"merchantTransactionId"`
		TransactionID         string `json:"transactionId"`
		Amount                int64  `json:"amount"`
		State                 string `json:"state"`
	} `json:"data"`
}

// ParseCallback verifies the X-VERIFY header against the base64 response
// field and decodes it. A bad checksum yields ErrSignatureMismatch.
func (c *Client) ParseCallback(body []byte, xVerify string) (*CallbackResult, error) {
	var env callbackEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Response == "" {
		return nil, fmt.Errorf("malformed phonepe callback: %w", domain.ErrBadRequest)
	}
	want := c.Checksum(env.Response)
	if subtle.ConstantTimeCompare([]byte(want), []byte(xVerify)) != 1 {
		return nil, domain.ErrSignatureMismatch
	}
	raw, err := base64.StdEncoding.DecodeString(env.Response)
	if err != nil {
		return nil, fmt.Errorf("malformed phonepe callback: %w", domain.ErrBadRequest)
	}
	var cb callbackBody
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, fmt.Errorf("malformed phonepe callback: %w", domain.ErrBadRequest)
	}
	return &CallbackResult{
		Success:               cb.Success,
		Code:                  cb.Code,
		MerchantTransactionID: cb.Data.MerchantTransactionID,
		TransactionID:         cb.Data.TransactionID,
		Amount:                domain.Money(cb.Data.Amount),
		State:                 cb.Data.State,
	}, nil
}
