package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-referral-api/internal/domain"
	"github.com/go-referral-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserSvc) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- helpers ---

// asUser builds a request that already passed middleware.Auth as u.
func asUser(method, target string, u *domain.User, body []byte) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if u == nil {
		return r
	}
	return r.WithContext(middleware.WithUser(r.Context(), u, "tok-"+u.UserID))
}

// withChiParam injects a chi URL param into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withChiID(r *http.Request, id string) *http.Request { return withChiParam(r, "id", id) }

var adminUser = &domain.User{UserID: "admin1", Role: domain.RoleAdmin, Status: domain.UserStatusVerified}

// --- List ---

func TestUserList_PassesPagination(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("List", mock.Anything, 25, "cur1").Return([]domain.User{{UserID: "u1"}}, "cur2", nil)
	h := NewUserHandler(svc)

	rr := httptest.NewRecorder()
	h.List(rr, asUser(http.MethodGet, "/api/admin/users?limit=25&cursor=cur1", adminUser, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Success    bool          `json:"success"`
		Data       []domain.User `json:"data"`
		NextCursor string        `json:"nextCursor"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "cur2", resp.NextCursor)
	svc.AssertExpectations(t)
}

// --- Get ---

func TestUserGet_NotFound(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)
	h := NewUserHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(asUser(http.MethodGet, "/api/admin/users/nope", adminUser, nil), "nope"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUserGet_OmitsSecrets(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Email: "a@example.com", PasswordHash: "$2a$hash", GoogleSub: "sub",
	}, nil)
	h := NewUserHandler(svc)

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(asUser(http.MethodGet, "/api/admin/users/u1", adminUser, nil), "u1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "$2a$hash")
	assert.NotContains(t, rr.Body.String(), "password")
	assert.Contains(t, rr.Body.String(), "a@example.com")
}

// --- Update ---

func TestUserUpdate_InvalidBody(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{})
	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(asUser(http.MethodPut, "/api/admin/users/u1", adminUser, []byte("not-json")), "u1"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserUpdate_RejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(&mockUserSvc{})
	role := "superuser"
	body, _ := json.Marshal(domain.UpdateUserRequest{Role: &role})

	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(asUser(http.MethodPut, "/api/admin/users/u1", adminUser, body), "u1"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUserUpdate_AdminCannotDemoteSelf(t *testing.T) {
	svc := &mockUserSvc{}
	h := NewUserHandler(svc)
	role := domain.RoleUser
	body, _ := json.Marshal(domain.UpdateUserRequest{Role: &role})

	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(asUser(http.MethodPut, "/api/admin/users/admin1", adminUser, body), "admin1"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserUpdate_PromotesOtherUser(t *testing.T) {
	svc := &mockUserSvc{}
	updated := &domain.User{UserID: "u2", Role: domain.RoleAdmin}
	svc.On("Update", mock.Anything, "u2", mock.Anything).Return(updated, nil)
	h := NewUserHandler(svc)
	role := domain.RoleAdmin
	body, _ := json.Marshal(domain.UpdateUserRequest{Role: &role})

	rr := httptest.NewRecorder()
	h.Update(rr, withChiID(asUser(http.MethodPut, "/api/admin/users/u2", adminUser, body), "u2"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"role":"admin"`)
	svc.AssertExpectations(t)
}

// --- Delete ---

func TestUserDelete_Self(t *testing.T) {
	svc := &mockUserSvc{}
	h := NewUserHandler(svc)

	rr := httptest.NewRecorder()
	h.Delete(rr, withChiID(asUser(http.MethodDelete, "/api/admin/users/admin1", adminUser, nil), "admin1"))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUserDelete_HappyPath(t *testing.T) {
	svc := &mockUserSvc{}
	svc.On("Delete", mock.Anything, "u2").Return(nil)
	h := NewUserHandler(svc)

	rr := httptest.NewRecorder()
	h.Delete(rr, withChiID(asUser(http.MethodDelete, "/api/admin/users/u2", adminUser, nil), "u2"))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
