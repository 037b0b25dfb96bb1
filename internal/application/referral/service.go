package referral

import (
	"context"
	"errors"

	"github.com/go-referral-api/internal/domain"
)

type Service interface {
	// Mine returns the caller's referral ledger. Accounts created before
	// ledgers existed get an empty one instead of a 404.
	Mine(ctx context.Context, u *domain.User) (*domain.Referral, error)
}

type referralStore interface {
	Get(ctx context.Context, userID string) (*domain.Referral, error)
}

type service struct {
	repo referralStore
}

type ServiceDeps struct {
	ReferralRepo referralStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.ReferralRepo}
}

func (s *service) Mine(ctx context.Context, u *domain.User) (*domain.Referral, error) {
	ref, err := s.repo.Get(ctx, u.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Referral{
			UserID:       u.UserID,
			ReferralCode: u.ReferralCode,
			Referrals:    []domain.ReferralEntry{},
		}, nil
	}
	return ref, err
}
