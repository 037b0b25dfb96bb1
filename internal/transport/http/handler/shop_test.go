package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockProductSvc struct{ mock.Mock }

func (m *mockProductSvc) List(ctx context.Context, enabledOnly bool) ([]domain.Product, error) {
	args := m.Called(ctx, enabledOnly)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductSvc) Get(ctx context.Context, productID string, includeDisabled bool) (*domain.Product, error) {
	args := m.Called(ctx, productID, includeDisabled)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductSvc) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, in)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductSvc) Update(ctx context.Context, productID string, in domain.ProductInput) (*domain.Product, error) {
	args := m.Called(ctx, productID, in)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductSvc) Delete(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *mockProductSvc) UploadImage(ctx context.Context, productID, filename string, r io.Reader) (*domain.Product, error) {
	args := m.Called(ctx, productID, filename, r)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func TestShopProducts_AnonymousSeesEnabledOnly(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("List", mock.Anything, true).Return([]domain.Product{{ProductID: "p1", Enable: true}}, nil)

	rr := httptest.NewRecorder()
	NewShopHandler(svc, nil).Products(rr, asUser(http.MethodGet, "/api/shop/products", nil, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestShopProducts_RegularUserSeesEnabledOnly(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("List", mock.Anything, true).Return([]domain.Product{}, nil)

	u := &domain.User{UserID: "u1", Role: domain.RoleUser}
	rr := httptest.NewRecorder()
	NewShopHandler(svc, nil).Products(rr, asUser(http.MethodGet, "/api/shop/products", u, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestShopProducts_AdminPreviewsDisabled(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("List", mock.Anything, false).Return([]domain.Product{{ProductID: "p2"}}, nil)

	rr := httptest.NewRecorder()
	NewShopHandler(svc, nil).Products(rr, asUser(http.MethodGet, "/api/shop/products", adminUser, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestShopProduct_DisabledHiddenFromAnonymous(t *testing.T) {
	svc := &mockProductSvc{}
	svc.On("Get", mock.Anything, "p2", false).Return(nil, domain.ErrNotFound)

	rr := httptest.NewRecorder()
	req := withChiID(asUser(http.MethodGet, "/api/shop/products/p2", nil, nil), "p2")
	NewShopHandler(svc, nil).Product(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	svc.AssertExpectations(t)
}
