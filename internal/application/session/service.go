package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/infrastructure/google"
	jwtinfra "github.com/go-referral-api/internal/infrastructure/jwt"
	pkgtoken "github.com/go-referral-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type LoginResult struct {
	Token string
	User  *domain.User
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*LoginResult, error)
	GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to its user. The token must carry a
	// valid signature, still be on the allow-list and belong to an enabled user.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Issue(ctx context.Context, u *domain.User) (string, error)
	RevokeAll(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	LinkGoogle(ctx context.Context, userID, sub string) error
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, tokenHash string) (*domain.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type tokenProvider interface {
	Sign(userID, role string) (string, time.Time, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	users    userStore
	sessions sessionStore
	tokens   tokenProvider
	google   googleVerifier
	now      func() time.Time
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionStore
	JWTProvider tokenProvider
	Google      googleVerifier // nil disables Google sign-in
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    deps.UserRepo,
		sessions: deps.SessionRepo,
		tokens:   deps.JWTProvider,
		google:   deps.Google,
		now:      now,
	}
}

var errBadCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	return s.passwordLogin(ctx, u, req.Password)
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.lookup(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("admin access required: %w", domain.ErrForbidden)
	}
	return s.passwordLogin(ctx, u, req.Password)
}

func (s *service) lookup(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errBadCredentials
	}
	return u, err
}

func (s *service) passwordLogin(ctx context.Context, u *domain.User, password string) (*LoginResult, error) {
	if u.Disabled() {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	tok, err := s.Issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, User: u}, nil
}

// GoogleLogin signs in an already registered user by their Google identity.
// Accounts are never created here; registration always goes through OTP.
func (s *service) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*LoginResult, error) {
	if s.google == nil {
		return nil, fmt.Errorf("google sign-in is not enabled: %w", domain.ErrForbidden)
	}
	p, err := s.google.Verify(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no account for %s, register first: %w", p.Email, domain.ErrNotFound)
		}
		return nil, err
	}
	if u.Disabled() {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	switch {
	case u.GoogleSub == "":
		if err := s.users.LinkGoogle(ctx, u.UserID, p.Sub); err != nil {
			return nil, err
		}
		u.GoogleSub = p.Sub
	case u.GoogleSub != p.Sub:
		return nil, fmt.Errorf("account linked to another google identity: %w", domain.ErrUnauthorized)
	}
	tok, err := s.Issue(ctx, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: tok, User: u}, nil
}

// Issue signs a token for u and puts it on the allow-list.
func (s *service) Issue(ctx context.Context, u *domain.User) (string, error) {
	tok, exp, err := s.tokens.Sign(u.UserID, u.Role)
	if err != nil {
		return "", err
	}
	sess := &domain.Session{
		TokenHash: pkgtoken.Fingerprint(tok),
		UserID:    u.UserID,
		ExpiresAt: exp.Unix(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return "", err
	}
	return tok, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, pkgtoken.Fingerprint(token))
}

func (s *service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	sess, err := s.sessions.Get(ctx, pkgtoken.Fingerprint(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("session revoked: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	// TTL deletion lags, so expiry is checked here as well.
	if sess.UserID != claims.UserID || sess.ExpiresAt < s.now().Unix() {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u.Disabled() {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

func (s *service) RevokeAll(ctx context.Context, userID string) error {
	return s.sessions.DeleteByUser(ctx, userID)
}
