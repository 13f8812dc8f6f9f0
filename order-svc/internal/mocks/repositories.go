package mocks

import (
	"context"

	"opendfood/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type TenantRepository struct {
	mock.Mock
}

func (m *TenantRepository) GetActiveRestaurantBySubdomain(ctx context.Context, subdomain string) (*domain.Restaurant, error) {
	args := m.Called(ctx, subdomain)
	return restaurantOrNil(args.Get(0)), args.Error(1)
}

func (m *TenantRepository) GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error) {
	args := m.Called(ctx, id)
	return restaurantOrNil(args.Get(0)), args.Error(1)
}

func (m *TenantRepository) ListRestaurantsByOwner(ctx context.Context, ownerID string) ([]domain.Restaurant, error) {
	args := m.Called(ctx, ownerID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Restaurant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TenantRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *TenantRepository) CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	return m.Called(ctx, rest).Error(0)
}

func (m *TenantRepository) UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	return m.Called(ctx, rest).Error(0)
}

func (m *TenantRepository) SetRestaurantActive(ctx context.Context, id int, active bool) (int64, error) {
	args := m.Called(ctx, id, active)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TenantRepository) SaveRestaurantQR(ctx context.Context, id int, qr []byte) error {
	return m.Called(ctx, id, qr).Error(0)
}

func (m *TenantRepository) GetRestaurantQR(ctx context.Context, id int) ([]byte, error) {
	args := m.Called(ctx, id)
	return bytesOrNil(args.Get(0)), args.Error(1)
}

type MenuRepository struct {
	mock.Mock
}

func (m *MenuRepository) ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error) {
	args := m.Called(ctx, restaurantID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MenuRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MenuRepository) ListMenuItems(ctx context.Context, restaurantID int) ([]domain.MenuItem, error) {
	args := m.Called(ctx, restaurantID)
	if v := args.Get(0); v != nil {
		return v.([]domain.MenuItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MenuRepository) GetMenuItems(ctx context.Context, restaurantID int, ids []int) (map[int]domain.MenuItem, error) {
	args := m.Called(ctx, restaurantID, ids)
	if v := args.Get(0); v != nil {
		return v.(map[int]domain.MenuItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MenuRepository) CreateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MenuRepository) UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MenuRepository) SetItemAvailability(ctx context.Context, restaurantID, itemID int, available bool) (int64, error) {
	args := m.Called(ctx, restaurantID, itemID, available)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MenuRepository) DeleteMenuItem(ctx context.Context, restaurantID, itemID int) (int64, error) {
	args := m.Called(ctx, restaurantID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

type TableRepository struct {
	mock.Mock
}

func (m *TableRepository) CreateTable(ctx context.Context, t *domain.Table) error {
	return m.Called(ctx, t).Error(0)
}

func (m *TableRepository) ListTables(ctx context.Context, restaurantID int) ([]domain.Table, error) {
	args := m.Called(ctx, restaurantID)
	if v := args.Get(0); v != nil {
		return v.([]domain.Table), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TableRepository) GetTable(ctx context.Context, restaurantID, tableID int) (*domain.Table, error) {
	args := m.Called(ctx, restaurantID, tableID)
	return tableOrNil(args.Get(0)), args.Error(1)
}

func (m *TableRepository) GetTableByToken(ctx context.Context, restaurantID int, token uuid.UUID) (*domain.Table, error) {
	args := m.Called(ctx, restaurantID, token)
	return tableOrNil(args.Get(0)), args.Error(1)
}

func (m *TableRepository) SetTableActive(ctx context.Context, restaurantID, tableID int, active bool) (int64, error) {
	args := m.Called(ctx, restaurantID, tableID, active)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TableRepository) DeleteTable(ctx context.Context, restaurantID, tableID int) (int64, error) {
	args := m.Called(ctx, restaurantID, tableID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TableRepository) SaveTableQR(ctx context.Context, tableID int, qr []byte) error {
	return m.Called(ctx, tableID, qr).Error(0)
}

func (m *TableRepository) GetTableQR(ctx context.Context, restaurantID, tableID int) ([]byte, error) {
	args := m.Called(ctx, restaurantID, tableID)
	return bytesOrNil(args.Get(0)), args.Error(1)
}

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order, lines []domain.LineRequest, taxRate decimal.Decimal) error {
	return m.Called(ctx, order, lines, taxRate).Error(0)
}

func (m *OrderRepository) GetOrder(ctx context.Context, restaurantID, orderID int) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, orderID)
	return orderOrNil(args.Get(0)), args.Error(1)
}

func (m *OrderRepository) ListOrders(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, restaurantID, filter)
	if v := args.Get(0); v != nil {
		return v.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *OrderRepository) UpdateOrderStatus(ctx context.Context, restaurantID, orderID int, from, to domain.Status) (int64, error) {
	args := m.Called(ctx, restaurantID, orderID, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepository) ReplaceOrderLines(ctx context.Context, restaurantID, orderID int, edits []domain.LineEdit, taxRate decimal.Decimal) (*domain.Order, error) {
	args := m.Called(ctx, restaurantID, orderID, edits, taxRate)
	return orderOrNil(args.Get(0)), args.Error(1)
}

func (m *OrderRepository) DeleteOrder(ctx context.Context, restaurantID, orderID int) (int64, error) {
	args := m.Called(ctx, restaurantID, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func restaurantOrNil(v interface{}) *domain.Restaurant {
	if v == nil {
		return nil
	}
	return v.(*domain.Restaurant)
}

func tableOrNil(v interface{}) *domain.Table {
	if v == nil {
		return nil
	}
	return v.(*domain.Table)
}

func orderOrNil(v interface{}) *domain.Order {
	if v == nil {
		return nil
	}
	return v.(*domain.Order)
}

func bytesOrNil(v interface{}) []byte {
	if v == nil {
		return nil
	}
	return v.([]byte)
}
