package service

import (
	"context"
	"errors"
	"time"

	"opendfood/analytics-svc/internal/domain"
	"opendfood/logger"

	"go.uber.org/zap"
)

const (
	dayLayout    = "2006-01-02"
	historyDays  = 7
	topItemLimit = 5
)

type DashboardService struct {
	repo     Repository
	counters LiveCounters
	now      func() time.Time
}

func NewDashboardService(repo Repository, counters LiveCounters) *DashboardService {
	return &DashboardService{repo: repo, counters: counters, now: time.Now}
}

// WithClock is used by tests to pin "today".
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

func (s *DashboardService) Authorize(ctx context.Context, restaurantID int, ownerID string) error {
	owner, err := s.repo.RestaurantOwner(ctx, restaurantID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrForbidden
	}
	if err != nil {
		return err
	}
	if owner != ownerID {
		return domain.ErrForbidden
	}
	return nil
}

// Dashboard combines all-time figures from Postgres with today's figures.
// Today's figures come from the agg-svc counters when present and are
// rebuilt from Postgres otherwise.
func (s *DashboardService) Dashboard(ctx context.Context, restaurantID int) (*domain.Dashboard, error) {
	today := s.now().UTC()
	day := today.Format(dayLayout)

	totalOrders, totalRevenue, err := s.repo.Totals(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	items, tables, err := s.repo.ActiveCounts(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	since := today.AddDate(0, 0, -(historyDays - 1)).Format(dayLayout)
	byDay, err := s.repo.OrdersPerDay(ctx, restaurantID, since)
	if err != nil {
		return nil, err
	}

	d := &domain.Dashboard{
		RestaurantID:    restaurantID,
		TotalOrders:     totalOrders,
		TotalRevenue:    totalRevenue.StringFixed(2),
		ActiveMenuItems: items,
		ActiveTables:    tables,
		OrdersByDay:     byDay,
	}
	if d.OrdersByDay == nil {
		d.OrdersByDay = []domain.DayCount{}
	}

	counters, top, source, err := s.todayFigures(ctx, restaurantID, day)
	if err != nil {
		return nil, err
	}
	d.TodayOrders = counters.Orders
	d.TodayRevenue = counters.Revenue.StringFixed(2)
	d.OrdersByType = counters.ByType
	d.TopItemsToday = top
	if d.TopItemsToday == nil {
		d.TopItemsToday = []domain.ItemCount{}
	}
	d.Source = source
	return d, nil
}

func (s *DashboardService) todayFigures(ctx context.Context, restaurantID int, day string) (*domain.DailyCounters, []domain.ItemCount, string, error) {
	log := logger.FromContext(ctx)

	if s.counters != nil {
		counters, err := s.counters.Day(ctx, restaurantID, day)
		if err != nil {
			log.Warn("live counters unavailable, using database", zap.Int("restaurant_id", restaurantID), zap.Error(err))
		}
		if counters != nil {
			top, err := s.counters.TopItems(ctx, restaurantID, day, topItemLimit)
			if err == nil {
				return counters, top, "redis", nil
			}
			log.Warn("live item counters unavailable, using database", zap.Int("restaurant_id", restaurantID), zap.Error(err))
		}
	}

	counters, err := s.repo.Day(ctx, restaurantID, day)
	if err != nil {
		return nil, nil, "", err
	}
	top, err := s.repo.TopItems(ctx, restaurantID, day, topItemLimit)
	if err != nil {
		return nil, nil, "", err
	}
	return counters, top, "database", nil
}
