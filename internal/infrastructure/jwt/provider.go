package jwtinfra

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-referral-api/internal/config"
	"github.com/go-referral-api/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Provider signs and verifies session tokens. HS256 is used when a shared
// secret is configured, otherwise RS256 with the PEM key pair.
type Provider struct {
	method    jwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
	expiry    time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret != "" {
		secret := []byte(cfg.JWTSecret)
		return &Provider{method: jwt.SigningMethodHS256, signKey: secret, verifyKey: secret, expiry: cfg.JWTExpiry}, nil
	}

	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{method: jwt.SigningMethodRS256, signKey: privKey, verifyKey: pubKey, expiry: cfg.JWTExpiry}, nil
}

// Sign issues a token for userID. The unique jti keeps two tokens issued in
// the same second distinct, which matters because sessions are keyed by token.
func (p *Provider) Sign(userID, role string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(p.expiry)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(p.method, claims)
	signed, err := token.SignedString(p.signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return p.verifyKey, nil
	}, jwt.WithValidMethods([]string{p.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
