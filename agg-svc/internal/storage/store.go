package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"opendfood/agg-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	counterTTL = 8 * 24 * time.Hour
	dedupTTL   = 7 * 24 * time.Hour
)

func DailyKey(day string, restaurantID int) string {
	return fmt.Sprintf("analytics:daily:%s:%d", day, restaurantID)
}

func ItemsKey(day string, restaurantID int) string {
	return fmt.Sprintf("analytics:items:%s:%d", day, restaurantID)
}

func ItemNamesKey(restaurantID int) string {
	return fmt.Sprintf("analytics:itemnames:%d", restaurantID)
}

func dedupKey(e domain.OrderEvent) string {
	return "analytics:seen:" + e.DedupKey()
}

// Store keeps per-restaurant, per-day counters in Redis:
//
//	analytics:daily:{day}:{rid}  hash  orders, type:{order_type}, revenue_cents
//	analytics:items:{day}:{rid}  zset  menu item id -> quantity ordered
//	analytics:itemnames:{rid}    hash  menu item id -> last seen name
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// MarkProcessed returns false when the event was already applied.
func (s *Store) MarkProcessed(ctx context.Context, e domain.OrderEvent) (bool, error) {
	return s.rdb.SetNX(ctx, dedupKey(e), 1, dedupTTL).Result()
}

func (s *Store) ForgetProcessed(ctx context.Context, e domain.OrderEvent) error {
	return s.rdb.Del(ctx, dedupKey(e)).Err()
}

func (s *Store) RecordOrder(ctx context.Context, e domain.OrderEvent) error {
	day := e.Day()
	daily := DailyKey(day, e.RestaurantID)
	items := ItemsKey(day, e.RestaurantID)

	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, daily, "orders", 1)
	if e.OrderType != "" {
		pipe.HIncrBy(ctx, daily, "type:"+e.OrderType, 1)
	}
	pipe.Expire(ctx, daily, counterTTL)

	if len(e.Items) > 0 {
		names := make(map[string]interface{}, len(e.Items))
		for _, it := range e.Items {
			id := strconv.Itoa(it.MenuItemID)
			pipe.ZIncrBy(ctx, items, float64(it.Quantity), id)
			names[id] = it.Name
		}
		pipe.Expire(ctx, items, counterTTL)
		pipe.HSet(ctx, ItemNamesKey(e.RestaurantID), names)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) AdjustRevenue(ctx context.Context, e domain.OrderEvent, deltaCents int64) error {
	daily := DailyKey(e.Day(), e.RestaurantID)

	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, daily, "revenue_cents", deltaCents)
	pipe.Expire(ctx, daily, counterTTL)
	_, err := pipe.Exec(ctx)
	return err
}
