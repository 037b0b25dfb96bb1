package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Count(ctx context.Context, paidOnly bool) (int, error) {
	args := m.Called(ctx, paidOnly)
	return args.Int(0), args.Error(1)
}

func (m *mockUserStore) CreatedInYear(ctx context.Context, year int) ([]time.Time, error) {
	args := m.Called(ctx, year)
	ts, _ := args.Get(0).([]time.Time)
	return ts, args.Error(1)
}

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) All(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	os, _ := args.Get(0).([]domain.Order)
	return os, args.Error(1)
}

func (m *mockOrderStore) CreatedInYear(ctx context.Context, year int) ([]time.Time, error) {
	args := m.Called(ctx, year)
	ts, _ := args.Get(0).([]time.Time)
	return ts, args.Error(1)
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 10, 0, 0, 0, time.UTC) }

func newService(us *mockUserStore, os *mockOrderStore) Service {
	return NewService(ServiceDeps{UserRepo: us, OrderRepo: os})
}

func TestMetrics(t *testing.T) {
	us, os := &mockUserStore{}, &mockOrderStore{}
	us.On("Count", mock.Anything, false).Return(4, nil)
	us.On("Count", mock.Anything, true).Return(1, nil)
	os.On("All", mock.Anything).Return([]domain.Order{
		{OrderID: "1", Status: domain.OrderStatusPaid, TotalAmount: domain.Rupees(100)},
		{OrderID: "2", Status: domain.OrderStatusDelivered, TotalAmount: domain.Rupees(50)},
		{OrderID: "3", Status: domain.OrderStatusPending, TotalAmount: domain.Rupees(999)},
		{OrderID: "4", Status: domain.OrderStatusCancelled, TotalAmount: domain.Rupees(999)},
	}, nil)

	m, err := newService(us, os).Metrics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, m.TotalUsers)
	assert.Equal(t, 1, m.PaidUsers)
	assert.Equal(t, "25.0% of total users", m.PaidRatio)
	assert.Equal(t, 4, m.TotalOrders)
	assert.Equal(t, domain.Rupees(150), m.Revenue)
}

func TestMetrics_NoUsers(t *testing.T) {
	us, os := &mockUserStore{}, &mockOrderStore{}
	us.On("Count", mock.Anything, mock.Anything).Return(0, nil)
	os.On("All", mock.Anything).Return(nil, nil)

	m, err := newService(us, os).Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0%", m.PaidRatio)
}

func TestUserGrowth_BucketsByMonthOfYear(t *testing.T) {
	us := &mockUserStore{}
	us.On("CreatedInYear", mock.Anything, 2024).Return([]time.Time{
		day(2024, time.January, 3),
		day(2024, time.January, 30),
		day(2024, time.December, 31),
		day(2023, time.January, 3),
	}, nil)

	points, err := newService(us, &mockOrderStore{}).UserGrowth(context.Background(), 2024)

	require.NoError(t, err)
	require.Len(t, points, 12)
	assert.Equal(t, domain.UserGrowthPoint{Period: "Jan", Users: 2}, points[0])
	assert.Equal(t, 0, points[5].Users)
	assert.Equal(t, domain.UserGrowthPoint{Period: "Dec", Users: 1}, points[11])
}

func TestOrderAnalytics(t *testing.T) {
	os := &mockOrderStore{}
	os.On("CreatedInYear", mock.Anything, 2024).Return([]time.Time{
		day(2024, time.March, 1),
		day(2024, time.March, 2),
		day(2024, time.April, 2),
	}, nil)

	points, err := newService(&mockUserStore{}, os).OrderAnalytics(context.Background(), 2024)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderAnalyticsPoint{Month: "Mar", Orders: 2}, points[2])
	assert.Equal(t, domain.OrderAnalyticsPoint{Month: "Apr", Orders: 1}, points[3])
}

func TestMetrics_CountsUsersWithoutLoadingThem(t *testing.T) {
	us, os := &mockUserStore{}, &mockOrderStore{}
	us.On("Count", mock.Anything, false).Return(10, nil)
	us.On("Count", mock.Anything, true).Return(3, nil)
	os.On("All", mock.Anything).Return([]domain.Order{}, nil)

	m, err := newService(us, os).Metrics(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, m.TotalUsers)
	assert.Equal(t, "30.0% of total users", m.PaidRatio)
	us.AssertNotCalled(t, "CreatedInYear", mock.Anything, mock.Anything)
}
