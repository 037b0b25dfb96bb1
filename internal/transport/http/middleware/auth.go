package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/pkg/logx"
)

type contextKey string

const (
	userKey  contextKey = "user"
	tokenKey contextKey = "token"
)

// Authenticator resolves a bearer token to an enabled user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth returns middleware that rejects requests without a valid Bearer token
// and injects the resolved user and raw token into the context.
func Auth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := BearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "not authorized, no token")
				return
			}
			u, err := a.Authenticate(r.Context(), tok)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrNotFound):
				writeJSONError(w, http.StatusNotFound, "user not found")
				return
			case errors.Is(err, domain.ErrUnauthorized):
				writeJSONError(w, http.StatusUnauthorized, "not authorized, token failed")
				return
			default:
				logx.FromContext(r.Context()).Error("authenticate", "err", err)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u, tok)))
		})
	}
}

// OptionalAuth attaches the user when the request carries a valid Bearer
// token and otherwise lets it through anonymously. Lookup failures other than
// a bad or revoked token are logged.
func OptionalAuth(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			u, err := a.Authenticate(r.Context(), tok)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthorized) && !errors.Is(err, domain.ErrNotFound) {
					logx.FromContext(r.Context()).Warn("optional authenticate", "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u, tok)))
		})
	}
}

// QueryToken copies a ?token= query parameter into the Authorization header
// when none is present. EventSource clients cannot set headers.
func QueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if tok := r.URL.Query().Get("token"); tok != "" {
				r.Header.Set("Authorization", "Bearer "+tok)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}

// WithUser stores the authenticated user and its token on ctx.
func WithUser(ctx context.Context, u *domain.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, tokenKey, token)
}

// UserFromContext returns the user injected by Auth or OptionalAuth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok && u != nil
}

func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}
