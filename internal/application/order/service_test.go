package order

import (
	"context"
	"errors"
	"testing"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderStore) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	os, _ := args.Get(0).([]domain.Order)
	return os, args.Error(1)
}
func (m *mockOrderStore) All(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	os, _ := args.Get(0).([]domain.Order)
	return os, args.Error(1)
}
func (m *mockOrderStore) UpdateStatus(ctx context.Context, orderID, status string) error {
	return m.Called(ctx, orderID, status).Error(0)
}
func (m *mockOrderStore) Delete(ctx context.Context, orderID string) error {
	return m.Called(ctx, orderID).Error(0)
}

func newService(os *mockOrderStore) Service {
	return NewService(ServiceDeps{OrderRepo: os})
}

func TestListMine_EmptyIsNotNil(t *testing.T) {
	os := &mockOrderStore{}
	os.On("ListByUser", mock.Anything, "u1").Return(nil, nil)

	orders, err := newService(os).ListMine(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, orders)
}

func TestList_PropagatesError(t *testing.T) {
	os := &mockOrderStore{}
	os.On("All", mock.Anything).Return(nil, errors.New("scan failed"))

	_, err := newService(os).List(context.Background())
	assert.EqualError(t, err, "scan failed")
}

func TestUpdateStatus_Valid(t *testing.T) {
	os := &mockOrderStore{}
	os.On("UpdateStatus", mock.Anything, "o1", domain.OrderStatusShipped).Return(nil)
	os.On("Get", mock.Anything, "o1").Return(&domain.Order{OrderID: "o1", Status: domain.OrderStatusShipped}, nil)

	o, err := newService(os).UpdateStatus(context.Background(), "o1", domain.UpdateOrderRequest{Status: domain.OrderStatusShipped})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, o.Status)
}

func TestUpdateStatus_Unknown(t *testing.T) {
	_, err := newService(&mockOrderStore{}).UpdateStatus(context.Background(), "o1", domain.UpdateOrderRequest{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdateStatus_MissingOrder(t *testing.T) {
	os := &mockOrderStore{}
	os.On("UpdateStatus", mock.Anything, "ghost", domain.OrderStatusPaid).Return(domain.ErrNotFound)

	_, err := newService(os).UpdateStatus(context.Background(), "ghost", domain.UpdateOrderRequest{Status: domain.OrderStatusPaid})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Delete", mock.Anything, "o1").Return(nil)

	require.NoError(t, newService(os).Delete(context.Background(), "o1"))
	os.AssertExpectations(t)
}
