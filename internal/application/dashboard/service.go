package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/go-referral-api/internal/domain"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

type Service interface {
	Metrics(ctx context.Context) (*domain.DashboardMetrics, error)
	// UserGrowth counts signups per calendar month of year (UTC).
	UserGrowth(ctx context.Context, year int) ([]domain.UserGrowthPoint, error)
	// OrderAnalytics counts orders per calendar month of year (UTC).
	OrderAnalytics(ctx context.Context, year int) ([]domain.OrderAnalyticsPoint, error)
}

type userStore interface {
	Count(ctx context.Context, paidOnly bool) (int, error)
	CreatedInYear(ctx context.Context, year int) ([]time.Time, error)
}

type orderStore interface {
	// All still reads every order: revenue needs each amount and status.
	All(ctx context.Context) ([]domain.Order, error)
	CreatedInYear(ctx context.Context, year int) ([]time.Time, error)
}

type service struct {
	users  userStore
	orders orderStore
}

type ServiceDeps struct {
	UserRepo  userStore
	OrderRepo orderStore
}

func NewService(deps ServiceDeps) Service {
	return &service{users: deps.UserRepo, orders: deps.OrderRepo}
}

func (s *service) Metrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	total, err := s.users.Count(ctx, false)
	if err != nil {
		return nil, err
	}
	paid, err := s.users.Count(ctx, true)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, err
	}
	m := &domain.DashboardMetrics{TotalUsers: total, PaidUsers: paid, TotalOrders: len(orders)}
	for i := range orders {
		if countsAsRevenue(orders[i].Status) {
			m.Revenue += orders[i].TotalAmount
		}
	}
	m.PaidRatio = paidRatio(m.PaidUsers, m.TotalUsers)
	return m, nil
}

func countsAsRevenue(status string) bool {
	switch status {
	case domain.OrderStatusPaid, domain.OrderStatusShipped, domain.OrderStatusDelivered:
		return true
	}
	return false
}

func paidRatio(paid, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%% of total users", float64(paid)/float64(total)*100)
}

func (s *service) UserGrowth(ctx context.Context, year int) ([]domain.UserGrowthPoint, error) {
	joined, err := s.users.CreatedInYear(ctx, year)
	if err != nil {
		return nil, err
	}
	var counts [12]int
	for _, at := range joined {
		bucket(&counts, at, year)
	}
	points := make([]domain.UserGrowthPoint, 12)
	for i, label := range monthLabels {
		points[i] = domain.UserGrowthPoint{Period: label, Users: counts[i]}
	}
	return points, nil
}

func (s *service) OrderAnalytics(ctx context.Context, year int) ([]domain.OrderAnalyticsPoint, error) {
	placed, err := s.orders.CreatedInYear(ctx, year)
	if err != nil {
		return nil, err
	}
	var counts [12]int
	for _, at := range placed {
		bucket(&counts, at, year)
	}
	points := make([]domain.OrderAnalyticsPoint, 12)
	for i, label := range monthLabels {
		points[i] = domain.OrderAnalyticsPoint{Month: label, Orders: counts[i]}
	}
	return points, nil
}

func bucket(counts *[12]int, at time.Time, year int) {
	at = at.UTC()
	if at.Year() == year {
		counts[at.Month()-1]++
	}
}
