package service

import (
	"context"
	"fmt"
	"strings"

	"opendfood/logger"
	"opendfood/order-svc/internal/domain"

	"go.uber.org/zap"
)

type MenuService struct {
	repo  MenuRepository
	cache MenuCache
}

func NewMenuService(repo MenuRepository, cache MenuCache) *MenuService {
	return &MenuService{repo: repo, cache: cache}
}

// Menu returns the tenant's active categories with their available items.
// The cache is best effort: Redis errors fall through to Postgres.
func (s *MenuService) Menu(ctx context.Context, tenant *domain.Restaurant) (*domain.Menu, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		menu, err := s.cache.GetMenu(ctx, tenant.ID)
		if err != nil {
			log.Warn("menu cache read failed", zap.Int("restaurant_id", tenant.ID), zap.Error(err))
		}
		if menu != nil {
			return menu, nil
		}
	}

	categories, err := s.repo.ListCategories(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListMenuItems(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	menu := buildMenu(tenant.ID, categories, items)
	if s.cache != nil {
		if err := s.cache.SetMenu(ctx, menu); err != nil {
			log.Warn("menu cache write failed", zap.Int("restaurant_id", tenant.ID), zap.Error(err))
		}
	}
	return menu, nil
}

func buildMenu(restaurantID int, categories []domain.Category, items []domain.MenuItem) *domain.Menu {
	byCategory := make(map[int][]domain.MenuItem)
	for _, it := range items {
		if it.IsAvailable {
			byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it)
		}
	}

	menu := &domain.Menu{RestaurantID: restaurantID, Categories: []domain.MenuCategory{}}
	for _, c := range categories {
		if !c.IsActive {
			continue
		}
		catItems := byCategory[c.ID]
		if catItems == nil {
			catItems = []domain.MenuItem{}
		}
		menu.Categories = append(menu.Categories, domain.MenuCategory{Category: c, Items: catItems})
	}
	return menu
}

func (s *MenuService) invalidate(ctx context.Context, restaurantID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateMenu(ctx, restaurantID); err != nil {
		logger.FromContext(ctx).Warn("menu cache invalidation failed", zap.Int("restaurant_id", restaurantID), zap.Error(err))
	}
}

func (s *MenuService) Categories(ctx context.Context, tenant *domain.Restaurant) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx, tenant.ID)
}

func (s *MenuService) CreateCategory(ctx context.Context, tenant *domain.Restaurant, c *domain.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	c.RestaurantID = tenant.ID
	c.Slug = domain.Slugify(c.Name)

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx, tenant.ID)
	return nil
}

func (s *MenuService) Items(ctx context.Context, tenant *domain.Restaurant) ([]domain.MenuItem, error) {
	return s.repo.ListMenuItems(ctx, tenant.ID)
}

func validateItem(item *domain.MenuItem) error {
	item.Name = strings.TrimSpace(item.Name)
	switch {
	case item.Name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case item.CategoryID <= 0:
		return fmt.Errorf("%w: category_id is required", domain.ErrInvalidInput)
	case item.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	case item.DiscountPrice != nil && item.DiscountPrice.IsNegative():
		return fmt.Errorf("%w: discount_price must not be negative", domain.ErrInvalidInput)
	}
	item.Price = item.Price.Round(2)
	if item.DiscountPrice != nil {
		d := item.DiscountPrice.Round(2)
		item.DiscountPrice = &d
	}
	return nil
}

func (s *MenuService) CreateItem(ctx context.Context, tenant *domain.Restaurant, item *domain.MenuItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	item.RestaurantID = tenant.ID

	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx, tenant.ID)
	return nil
}

// UpdateItem changes the catalog only. Lines already ordered keep the price
// they were created with.
func (s *MenuService) UpdateItem(ctx context.Context, tenant *domain.Restaurant, item *domain.MenuItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	item.RestaurantID = tenant.ID

	if err := s.repo.UpdateMenuItem(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx, tenant.ID)
	return nil
}

func (s *MenuService) SetAvailability(ctx context.Context, tenant *domain.Restaurant, itemID int, available bool) error {
	rows, err := s.repo.SetItemAvailability(ctx, tenant.ID, itemID, available)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	s.invalidate(ctx, tenant.ID)
	return nil
}

func (s *MenuService) DeleteItem(ctx context.Context, tenant *domain.Restaurant, itemID int) error {
	rows, err := s.repo.DeleteMenuItem(ctx, tenant.ID, itemID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	s.invalidate(ctx, tenant.ID)
	return nil
}
