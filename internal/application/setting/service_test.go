package setting

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-referral-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSettingStore struct{ mock.Mock }

func (m *mockSettingStore) Put(ctx context.Context, s *domain.Setting) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSettingStore) Get(ctx context.Context, key string) (*domain.Setting, error) {
	args := m.Called(ctx, key)
	if s, _ := args.Get(0).(*domain.Setting); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSettingStore) List(ctx context.Context) ([]domain.Setting, error) {
	args := m.Called(ctx)
	ss, _ := args.Get(0).([]domain.Setting)
	return ss, args.Error(1)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(ss *mockSettingStore) Service {
	return NewService(ServiceDeps{SettingRepo: ss, Now: func() time.Time { return fixedNow }})
}

func TestPut_Upserts(t *testing.T) {
	ss := &mockSettingStore{}
	ss.On("Put", mock.Anything, &domain.Setting{Key: "referral_banner", Value: "Invite friends", UpdatedAt: fixedNow}).Return(nil)

	st, err := newService(ss).Put(context.Background(), " referral_banner ", PutRequest{Value: "Invite friends"})

	require.NoError(t, err)
	assert.Equal(t, "referral_banner", st.Key)
	ss.AssertExpectations(t)
}

func TestPut_RejectsBadKey(t *testing.T) {
	_, err := newService(&mockSettingStore{}).Put(context.Background(), strings.Repeat("k", 65), PutRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = newService(&mockSettingStore{}).Put(context.Background(), "  ", PutRequest{})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestGet_Missing(t *testing.T) {
	ss := &mockSettingStore{}
	ss.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := newService(ss).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
