package order

import (
	"context"
	"fmt"

	"github.com/go-referral-api/internal/domain"
)

type Service interface {
	ListMine(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, req domain.UpdateOrderRequest) (*domain.Order, error)
	Delete(ctx context.Context, orderID string) error
}

type orderStore interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	All(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	Delete(ctx context.Context, orderID string) error
}

type service struct {
	repo orderStore
}

type ServiceDeps struct {
	OrderRepo orderStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.OrderRepo}
}

func (s *service) ListMine(ctx context.Context, userID string) ([]domain.Order, error) {
	return nonNil(s.repo.ListByUser(ctx, userID))
}

func (s *service) List(ctx context.Context) ([]domain.Order, error) {
	return nonNil(s.repo.All(ctx))
}

func nonNil(orders []domain.Order, err error) ([]domain.Order, error) {
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

func (s *service) UpdateStatus(ctx context.Context, orderID string, req domain.UpdateOrderRequest) (*domain.Order, error) {
	switch req.Status {
	case domain.OrderStatusPending, domain.OrderStatusPaid, domain.OrderStatusShipped,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled:
	default:
		return nil, fmt.Errorf("invalid order status %q: %w", req.Status, domain.ErrBadRequest)
	}
	if err := s.repo.UpdateStatus(ctx, orderID, req.Status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orderID)
}

func (s *service) Delete(ctx context.Context, orderID string) error {
	return s.repo.Delete(ctx, orderID)
}
