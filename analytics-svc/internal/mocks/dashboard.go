package mocks

import (
	"context"

	"opendfood/analytics-svc/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type Repository struct {
	mock.Mock
}

func (m *Repository) RestaurantOwner(ctx context.Context, restaurantID int) (string, error) {
	args := m.Called(ctx, restaurantID)
	return args.String(0), args.Error(1)
}

func (m *Repository) Totals(ctx context.Context, restaurantID int) (int64, decimal.Decimal, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *Repository) ActiveCounts(ctx context.Context, restaurantID int) (int64, int64, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *Repository) OrdersPerDay(ctx context.Context, restaurantID int, since string) ([]domain.DayCount, error) {
	args := m.Called(ctx, restaurantID, since)
	if v := args.Get(0); v != nil {
		return v.([]domain.DayCount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) Day(ctx context.Context, restaurantID int, day string) (*domain.DailyCounters, error) {
	args := m.Called(ctx, restaurantID, day)
	if v := args.Get(0); v != nil {
		return v.(*domain.DailyCounters), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Repository) TopItems(ctx context.Context, restaurantID int, day string, limit int) ([]domain.ItemCount, error) {
	args := m.Called(ctx, restaurantID, day, limit)
	if v := args.Get(0); v != nil {
		return v.([]domain.ItemCount), args.Error(1)
	}
	return nil, args.Error(1)
}

type LiveCounters struct {
	mock.Mock
}

func (m *LiveCounters) Day(ctx context.Context, restaurantID int, day string) (*domain.DailyCounters, error) {
	args := m.Called(ctx, restaurantID, day)
	if v := args.Get(0); v != nil {
		return v.(*domain.DailyCounters), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LiveCounters) TopItems(ctx context.Context, restaurantID int, day string, limit int) ([]domain.ItemCount, error) {
	args := m.Called(ctx, restaurantID, day, limit)
	if v := args.Get(0); v != nil {
		return v.([]domain.ItemCount), args.Error(1)
	}
	return nil, args.Error(1)
}

type DashboardInterface struct {
	mock.Mock
}

func (m *DashboardInterface) Authorize(ctx context.Context, restaurantID int, ownerID string) error {
	return m.Called(ctx, restaurantID, ownerID).Error(0)
}

func (m *DashboardInterface) Dashboard(ctx context.Context, restaurantID int) (*domain.Dashboard, error) {
	args := m.Called(ctx, restaurantID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Dashboard), args.Error(1)
	}
	return nil, args.Error(1)
}
