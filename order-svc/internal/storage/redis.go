package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"opendfood/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client        *redis.Client
	MenuTTL       time.Duration
	SubmissionTTL time.Duration
}

func NewRedisCache(client *redis.Client, menuTTL, submissionTTL time.Duration) *RedisCache {
	return &RedisCache{Client: client, MenuTTL: menuTTL, SubmissionTTL: submissionTTL}
}

func (c *RedisCache) MenuKey(restaurantID int) string {
	return "menu:" + strconv.Itoa(restaurantID)
}

func (c *RedisCache) SubmissionKey(restaurantID int, key string) string {
	return "submission:" + strconv.Itoa(restaurantID) + ":" + key
}

// GetMenu returns (nil, nil) on a cache miss.
func (c *RedisCache) GetMenu(ctx context.Context, restaurantID int) (*domain.Menu, error) {
	raw, err := c.Client.Get(ctx, c.MenuKey(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var menu domain.Menu
	if err := json.Unmarshal(raw, &menu); err != nil {
		return nil, err
	}
	return &menu, nil
}

func (c *RedisCache) SetMenu(ctx context.Context, menu *domain.Menu) error {
	payload, err := json.Marshal(menu)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.MenuKey(menu.RestaurantID), payload, c.MenuTTL).Err()
}

func (c *RedisCache) InvalidateMenu(ctx context.Context, restaurantID int) error {
	return c.Client.Del(ctx, c.MenuKey(restaurantID)).Err()
}

// ClaimSubmission marks an idempotency key as used. It returns false when the
// key was already claimed within the TTL.
func (c *RedisCache) ClaimSubmission(ctx context.Context, restaurantID int, key string) (bool, error) {
	return c.Client.SetNX(ctx, c.SubmissionKey(restaurantID, key), "1", c.SubmissionTTL).Result()
}

// ReleaseSubmission frees a key whose submission failed so the client may
// retry with it.
func (c *RedisCache) ReleaseSubmission(ctx context.Context, restaurantID int, key string) error {
	return c.Client.Del(ctx, c.SubmissionKey(restaurantID, key)).Err()
}
