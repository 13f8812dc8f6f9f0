package service

import (
	"context"

	"opendfood/analytics-svc/internal/domain"
	"opendfood/analytics-svc/internal/storage"

	"github.com/shopspring/decimal"
)

type Repository interface {
	RestaurantOwner(ctx context.Context, restaurantID int) (string, error)
	Totals(ctx context.Context, restaurantID int) (int64, decimal.Decimal, error)
	ActiveCounts(ctx context.Context, restaurantID int) (items, tables int64, err error)
	OrdersPerDay(ctx context.Context, restaurantID int, since string) ([]domain.DayCount, error)
	Day(ctx context.Context, restaurantID int, day string) (*domain.DailyCounters, error)
	TopItems(ctx context.Context, restaurantID int, day string, limit int) ([]domain.ItemCount, error)
}

// LiveCounters is the Redis view of today's figures.
type LiveCounters interface {
	Day(ctx context.Context, restaurantID int, day string) (*domain.DailyCounters, error)
	TopItems(ctx context.Context, restaurantID int, day string, limit int) ([]domain.ItemCount, error)
}

type DashboardInterface interface {
	Authorize(ctx context.Context, restaurantID int, ownerID string) error
	Dashboard(ctx context.Context, restaurantID int) (*domain.Dashboard, error)
}

var (
	_ Repository         = (*storage.PostgresRepository)(nil)
	_ LiveCounters       = (*storage.Counters)(nil)
	_ DashboardInterface = (*DashboardService)(nil)
)
