package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"opendfood/analytics-svc/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Counters reads the hashes and sorted sets agg-svc maintains.
type Counters struct {
	rdb *redis.Client
}

func NewCounters(rdb *redis.Client) *Counters {
	return &Counters{rdb: rdb}
}

func dailyKey(day string, restaurantID int) string {
	return fmt.Sprintf("analytics:daily:%s:%d", day, restaurantID)
}

func itemsKey(day string, restaurantID int) string {
	return fmt.Sprintf("analytics:items:%s:%d", day, restaurantID)
}

func itemNamesKey(restaurantID int) string {
	return fmt.Sprintf("analytics:itemnames:%d", restaurantID)
}

// Day returns nil, nil when no counters exist for that day.
func (c *Counters) Day(ctx context.Context, restaurantID int, day string) (*domain.DailyCounters, error) {
	fields, err := c.rdb.HGetAll(ctx, dailyKey(day, restaurantID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	dc := &domain.DailyCounters{Revenue: decimal.Zero, ByType: map[string]int64{}}
	for field, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		switch {
		case field == "orders":
			dc.Orders = n
		case field == "revenue_cents":
			dc.Revenue = decimal.New(n, -2)
		case strings.HasPrefix(field, "type:"):
			dc.ByType[strings.TrimPrefix(field, "type:")] = n
		}
	}
	return dc, nil
}

func (c *Counters) TopItems(ctx context.Context, restaurantID int, day string, limit int) ([]domain.ItemCount, error) {
	members, err := c.rdb.ZRevRangeWithScores(ctx, itemsKey(day, restaurantID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.Member.(string))
	}
	names, err := c.rdb.HMGet(ctx, itemNamesKey(restaurantID), ids...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]domain.ItemCount, 0, len(members))
	for i, m := range members {
		id, err := strconv.Atoi(ids[i])
		if err != nil {
			continue
		}
		name, _ := names[i].(string)
		out = append(out, domain.ItemCount{MenuItemID: id, Name: name, Quantity: int64(m.Score)})
	}
	return out, nil
}
