package setting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-referral-api/internal/domain"
)

type PutRequest struct {
	Value string `json:"value" validate:"max=2000"`
}

// Service manages free-form key/value settings edited from the admin panel.
type Service interface {
	List(ctx context.Context) ([]domain.Setting, error)
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Put(ctx context.Context, key string, req PutRequest) (*domain.Setting, error)
}

type settingStore interface {
	Put(ctx context.Context, s *domain.Setting) error
	Get(ctx context.Context, key string) (*domain.Setting, error)
	List(ctx context.Context) ([]domain.Setting, error)
}

type service struct {
	repo settingStore
	now  func() time.Time
}

type ServiceDeps struct {
	SettingRepo settingStore
	Now         func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: deps.SettingRepo, now: now}
}

func (s *service) List(ctx context.Context) ([]domain.Setting, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, key string) (*domain.Setting, error) {
	return s.repo.Get(ctx, key)
}

func (s *service) Put(ctx context.Context, key string, req PutRequest) (*domain.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 64 {
		return nil, fmt.Errorf("setting key must be 1-64 characters: %w", domain.ErrBadRequest)
	}
	st := &domain.Setting{Key: key, Value: req.Value, UpdatedAt: s.now().UTC()}
	if err := s.repo.Put(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
