package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-referral-api/internal/domain"
	"google.golang.org/api/idtoken"
)

// Payload holds the verified claims extracted from a Google ID token.
type Payload struct {
	Sub   string
	Email string
	Name  string
}

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify validates the Google ID token and returns the extracted payload.
// Tokens for unverified Google addresses are refused: sign-in is matched
// against local accounts by email.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	email, _ := p.Claims["email"].(string)
	verified, _ := p.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}
	name, _ := p.Claims["name"].(string)
	return &Payload{
		Sub:   p.Subject,
		Email: strings.ToLower(email),
		Name:  name,
	}, nil
}
