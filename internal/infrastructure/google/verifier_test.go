package google

import (
	"context"
	"errors"
	"testing"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func stubVerifier(p *idtoken.Payload, err error) *Verifier {
	return &Verifier{
		clientID: "client-1",
		validate: func(_ context.Context, _, aud string) (*idtoken.Payload, error) {
			if aud != "client-1" {
				return nil, errors.New("audience mismatch")
			}
			return p, err
		},
	}
}

func TestVerify_Success(t *testing.T) {
	v := stubVerifier(&idtoken.Payload{
		Subject: "sub-1",
		Claims:  map[string]interface{}{"email": "Jane@Example.com", "email_verified": true, "name": "Jane Doe"},
	}, nil)

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", p.Sub)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.Equal(t, "Jane Doe", p.Name)
}

func TestVerify_UnverifiedEmail(t *testing.T) {
	v := stubVerifier(&idtoken.Payload{
		Subject: "sub-1",
		Claims:  map[string]interface{}{"email": "jane@example.com", "email_verified": false},
	}, nil)

	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_InvalidToken(t *testing.T) {
	v := stubVerifier(nil, errors.New("bad signature"))
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
