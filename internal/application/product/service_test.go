package product

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockProductStore struct{ mock.Mock }

func (m *mockProductStore) Put(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProductStore) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProductStore) List(ctx context.Context, enabledOnly bool) ([]domain.Product, error) {
	args := m.Called(ctx, enabledOnly)
	ps, _ := args.Get(0).([]domain.Product)
	return ps, args.Error(1)
}
func (m *mockProductStore) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	return m.Called(ctx, productID, updates).Error(0)
}
func (m *mockProductStore) SetImageKey(ctx context.Context, productID, key string) error {
	return m.Called(ctx, productID, key).Error(0)
}
func (m *mockProductStore) SoftDelete(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	return m.Called(ctx, key, r, contentType).Error(0)
}
func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newService(ps *mockProductStore, os *mockObjectStore) Service {
	return NewService(ServiceDeps{ProductRepo: ps, Objects: os})
}

func ptr[T any](v T) *T { return &v }

// --- tests ---

func TestList_PresignsImages(t *testing.T) {
	ps, os := &mockProductStore{}, &mockObjectStore{}
	ps.On("List", mock.Anything, true).Return([]domain.Product{
		{ProductID: "p1", ImageKey: "products/p1/a.png", Enable: true},
		{ProductID: "p2", Enable: true},
	}, nil)
	os.On("PresignedURL", mock.Anything, "products/p1/a.png", time.Hour).Return("https://s3/a.png", nil)

	products, err := newService(ps, os).List(context.Background(), true)

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "https://s3/a.png", products[0].ImageURL)
	assert.Empty(t, products[1].ImageURL)
}

func TestGet_DisabledHiddenFromShop(t *testing.T) {
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{ProductID: "p1", Enable: false}, nil)

	_, err := newService(ps, &mockObjectStore{}).Get(context.Background(), "p1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := newService(ps, &mockObjectStore{}).Get(context.Background(), "p1", true)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ProductID)
}

func TestCreate_DefaultsToEnabled(t *testing.T) {
	ps := &mockProductStore{}
	ps.On("Put", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	p, err := newService(ps, nil).Create(context.Background(), domain.ProductInput{
		Name: " Premium Pass ", Price: domain.Rupees(499), Stock: 10,
	})

	require.NoError(t, err)
	assert.True(t, p.Enable)
	assert.Equal(t, "Premium Pass", p.Name)
	assert.NotEmpty(t, p.ProductID)
}

func TestCreate_RejectsFreeProduct(t *testing.T) {
	_, err := newService(&mockProductStore{}, nil).Create(context.Background(), domain.ProductInput{Name: "Free", Price: 0})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_WritesFieldsAndReloads(t *testing.T) {
	ps := &mockProductStore{}
	ps.On("Update", mock.Anything, "p1", map[string]interface{}{
		"name": "Pass", "description": "", "price": domain.Rupees(10), "stock": 3, "enable": false,
	}).Return(nil)
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{ProductID: "p1", Name: "Pass"}, nil)

	p, err := newService(ps, &mockObjectStore{}).Update(context.Background(), "p1", domain.ProductInput{
		Name: "Pass", Price: domain.Rupees(10), Stock: 3, Enable: ptr(false),
	})

	require.NoError(t, err)
	assert.Equal(t, "Pass", p.Name)
	ps.AssertExpectations(t)
}

func TestUploadImage_ReplacesPreviousObject(t *testing.T) {
	ps, os := &mockProductStore{}, &mockObjectStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{ProductID: "p1", ImageKey: "products/p1/old.jpg"}, nil)
	os.On("Upload", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "products/p1/") && strings.HasSuffix(k, ".png")
	}), mock.Anything, "image/png").Return(nil)
	ps.On("SetImageKey", mock.Anything, "p1", mock.Anything).Return(nil)
	os.On("Delete", mock.Anything, "products/p1/old.jpg").Return(nil)
	os.On("PresignedURL", mock.Anything, mock.Anything, time.Hour).Return("https://s3/new.png", nil)

	p, err := newService(ps, os).UploadImage(context.Background(), "p1", "Photo.PNG", strings.NewReader("png"))

	require.NoError(t, err)
	assert.Equal(t, "https://s3/new.png", p.ImageURL)
	assert.NotEqual(t, "products/p1/old.jpg", p.ImageKey)
	os.AssertExpectations(t)
}

func TestUploadImage_RejectsNonImage(t *testing.T) {
	_, err := newService(&mockProductStore{}, &mockObjectStore{}).UploadImage(context.Background(), "p1", "script.sh", strings.NewReader(""))
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUploadImage_UnknownProduct(t *testing.T) {
	ps, os := &mockProductStore{}, &mockObjectStore{}
	ps.On("Get", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, err := newService(ps, os).UploadImage(context.Background(), "ghost", "a.jpg", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	os.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
