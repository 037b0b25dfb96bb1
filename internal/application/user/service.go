package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-referral-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName   = "name"
	fieldPhone  = "phone"
	fieldRole   = "role"
	fieldStatus = "status"
)

const defaultPageSize = 50

// Service is the admin surface over user accounts.
type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

type userStore interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	Disable(ctx context.Context, userID string) error
}

type sessionRevoker interface {
	DeleteByUser(ctx context.Context, userID string) error
}

type service struct {
	repo     userStore
	sessions sessionRevoker
}

type ServiceDeps struct {
	UserRepo    userStore
	SessionRepo sessionRevoker
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:     deps.UserRepo,
		sessions: deps.SessionRepo,
	}
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 || limit > 100 {
		limit = defaultPageSize
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updates[fieldPhone] = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		switch *req.Role {
		case domain.RoleAdmin, domain.RoleUser:
			updates[fieldRole] = *req.Role
		default:
			return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
		}
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.UserStatusVerified, domain.UserStatusDisabled:
			updates[fieldStatus] = *req.Status
		default:
			return nil, fmt.Errorf("invalid status: %w", domain.ErrBadRequest)
		}
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	if req.Status != nil && *req.Status == domain.UserStatusDisabled {
		s.revoke(ctx, userID)
	}
	return s.repo.Get(ctx, userID)
}

// Delete disables the account and signs it out everywhere. The record stays
// because referral ledgers of other users point at it.
func (s *service) Delete(ctx context.Context, userID string) error {
	if err := s.repo.Disable(ctx, userID); err != nil {
		return err
	}
	s.revoke(ctx, userID)
	return nil
}

// revoke is best effort: a disabled user fails authentication even with a live session.
func (s *service) revoke(ctx context.Context, userID string) {
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		slog.Warn("could not revoke sessions", "user_id", userID, "err", err)
	}
}
