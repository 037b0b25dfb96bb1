package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-referral-api/internal/config"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() http.Handler {
	return newTestRouterWith(&config.Config{AllowedOrigins: []string{"http://localhost:5173"}})
}

func newTestRouterWith(cfg *config.Config) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(cfg, &Deps{}, logger)
}

// loginStatuses sends n empty logins from one connection, each claiming a
// different forwarded client.
func loginStatuses(h http.Handler, n int) []int {
	codes := make([]int, 0, n)
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{}"))
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	return codes
}

func TestRouter_Health(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"message":"ok"}`, rr.Body.String())
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	h := newTestRouter()
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/wallet/balance"},
		{http.MethodPost, "/api/shop/buy/initiate"},
		{http.MethodGet, "/api/realtime/stream"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPut, "/api/admin/settings/referral_reward"},
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ForwardedForIgnoredByDefault(t *testing.T) {
	codes := loginStatuses(newTestRouter(), 11)
	assert.Equal(t, http.StatusTooManyRequests, codes[10])
}

func TestRouter_ForwardedForHonouredBehindTrustedProxy(t *testing.T) {
	h := newTestRouterWith(&config.Config{TrustProxy: true})
	for _, code := range loginStatuses(h, 11) {
		assert.NotEqual(t, http.StatusTooManyRequests, code)
	}
}
