package referral

import (
	"context"
	"errors"
	"testing"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReferralStore struct{ mock.Mock }

func (m *mockReferralStore) Get(ctx context.Context, userID string) (*domain.Referral, error) {
	args := m.Called(ctx, userID)
	if r, _ := args.Get(0).(*domain.Referral); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMine_ReturnsLedger(t *testing.T) {
	rs := &mockReferralStore{}
	rs.On("Get", mock.Anything, "u1").Return(&domain.Referral{UserID: "u1", TotalReferrals: 2, TotalEarnings: domain.Rupees(200)}, nil)

	ref, err := NewService(ServiceDeps{ReferralRepo: rs}).Mine(context.Background(), &domain.User{UserID: "u1"})

	require.NoError(t, err)
	assert.Equal(t, 2, ref.TotalReferrals)
	assert.Equal(t, domain.Rupees(200), ref.TotalEarnings)
}

func TestMine_MissingLedgerIsEmpty(t *testing.T) {
	rs := &mockReferralStore{}
	rs.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	ref, err := NewService(ServiceDeps{ReferralRepo: rs}).Mine(context.Background(), &domain.User{UserID: "u1", ReferralCode: "ABCD2345"})

	require.NoError(t, err)
	assert.Equal(t, "ABCD2345", ref.ReferralCode)
	assert.NotNil(t, ref.Referrals)
	assert.Empty(t, ref.Referrals)
}

func TestMine_StoreError(t *testing.T) {
	rs := &mockReferralStore{}
	rs.On("Get", mock.Anything, "u1").Return(nil, errors.New("throttled"))

	_, err := NewService(ServiceDeps{ReferralRepo: rs}).Mine(context.Background(), &domain.User{UserID: "u1"})
	assert.EqualError(t, err, "throttled")
}
