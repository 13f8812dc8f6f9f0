package tests

import (
	"context"
	"strconv"
	"sync"
	"time"

	"opendfood/order-svc/internal/domain"
	"opendfood/order-svc/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for Postgres. A single mutex plays the
// role of the transaction; order numbers are unique like the real constraint.
type memStore struct {
	service.TenantRepository
	service.MenuRepository
	service.TableRepository

	mu          sync.Mutex
	restaurants map[int]*domain.Restaurant
	items       map[int]domain.MenuItem
	tables      map[uuid.UUID]domain.Table
	orders      map[int]*domain.Order
	numbers     map[string]bool
	nextID      int
}

func newMemStore() *memStore {
	return &memStore{
		restaurants: map[int]*domain.Restaurant{},
		items:       map[int]domain.MenuItem{},
		tables:      map[uuid.UUID]domain.Table{},
		orders:      map[int]*domain.Order{},
		numbers:     map[string]bool{},
	}
}

func (s *memStore) addRestaurant(r *domain.Restaurant) {
	s.restaurants[r.ID] = r
}

func (s *memStore) addItem(it domain.MenuItem) {
	s.items[it.ID] = it
}

func (s *memStore) addTable(t domain.Table) {
	s.tables[t.Token] = t
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) GetActiveRestaurantBySubdomain(ctx context.Context, subdomain string) (*domain.Restaurant, error) {
	for _, r := range s.restaurants {
		if r.Subdomain == subdomain && r.IsActive {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error) {
	if r, ok := s.restaurants[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetMenuItems(ctx context.Context, restaurantID int, ids []int) (map[int]domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsFor(restaurantID, ids), nil
}

func (s *memStore) itemsFor(restaurantID int, ids []int) map[int]domain.MenuItem {
	out := map[int]domain.MenuItem{}
	for _, id := range ids {
		if it, ok := s.items[id]; ok && it.RestaurantID == restaurantID {
			out[id] = it
		}
	}
	return out
}

func (s *memStore) GetTableByToken(ctx context.Context, restaurantID int, token uuid.UUID) (*domain.Table, error) {
	t, ok := s.tables[token]
	if !ok || t.RestaurantID != restaurantID {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *memStore) GetTable(ctx context.Context, restaurantID, tableID int) (*domain.Table, error) {
	for _, t := range s.tables {
		if t.ID == tableID && t.RestaurantID == restaurantID {
			t := t
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) CreateOrder(ctx context.Context, order *domain.Order, lines []domain.LineRequest, taxRate decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}
	if err := domain.PriceOrder(order, lines, s.itemsFor(order.RestaurantID, ids), taxRate); err != nil {
		return err
	}
	if s.numbers[order.OrderNumber] {
		return domain.ErrDuplicateOrderNumber
	}

	s.nextID++
	order.ID = s.nextID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].ID = s.nextID*100 + i
	}
	s.numbers[order.OrderNumber] = true

	stored := *order
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders[order.ID] = &stored
	return nil
}

func (s *memStore) GetOrder(ctx context.Context, restaurantID, orderID int) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.RestaurantID != restaurantID {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) ListOrders(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for id := s.nextID; id > 0; id-- {
		o, ok := s.orders[id]
		if !ok || o.RestaurantID != restaurantID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *memStore) UpdateOrderStatus(ctx context.Context, restaurantID, orderID int, from, to domain.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.RestaurantID != restaurantID || o.Status != from {
		return 0, nil
	}
	o.Status = to
	return 1, nil
}

func (s *memStore) ReplaceOrderLines(ctx context.Context, restaurantID, orderID int, edits []domain.LineEdit, taxRate decimal.Decimal) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.RestaurantID != restaurantID {
		return nil, domain.ErrNotFound
	}
	if o.Status.Terminal() {
		return nil, domain.ErrOrderClosed
	}
	ids := make([]int, 0, len(edits))
	for _, e := range edits {
		ids = append(ids, e.MenuItemID)
	}
	lines, err := domain.ApplyLineEdits(o.Items, edits, s.itemsFor(restaurantID, ids))
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTotals(lines, taxRate); err != nil {
		return nil, err
	}
	o.Items = lines
	domain.Recalculate(o, taxRate)
	cp := *o
	return &cp, nil
}

func (s *memStore) DeleteOrder(ctx context.Context, restaurantID, orderID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.RestaurantID != restaurantID {
		return 0, nil
	}
	delete(s.orders, orderID)
	return 1, nil
}

// DeleteMenuItem refuses items that order lines still reference, like the
// foreign key on order_items.
func (s *memStore) DeleteMenuItem(ctx context.Context, restaurantID, itemID int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok || it.RestaurantID != restaurantID {
		return 0, nil
	}
	for _, o := range s.orders {
		for _, line := range o.Items {
			if line.MenuItemID == itemID {
				return 0, domain.ErrItemInUse
			}
		}
	}
	delete(s.items, itemID)
	return 1, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

var (
	bistroTable = uuid.MustParse("6f1c8a52-3c1e-4a44-9d0e-3c7a9f0b2a11")
	pizzaTable  = uuid.MustParse("0b8e8f3e-8a9f-4c9e-bb1c-5d1f6f2c9e22")
	closedTable = uuid.MustParse("9a7c2f10-1b2c-4d3e-8f9a-0b1c2d3e4f33")
)

// seededStore holds two tenants: bistro (id 1) with a Burger at 10.00
// discounted to 8.00, and pizza (id 2).
func seededStore() *memStore {
	s := newMemStore()
	s.addRestaurant(&domain.Restaurant{ID: 1, OwnerID: "owner-1", Name: "Bistro", Subdomain: "bistro", IsActive: true, Email: "bistro@example.com"})
	s.addRestaurant(&domain.Restaurant{ID: 2, OwnerID: "owner-2", Name: "Pizza", Subdomain: "pizza", IsActive: true})
	s.addRestaurant(&domain.Restaurant{ID: 3, OwnerID: "owner-3", Name: "Gone", Subdomain: "gone", IsActive: false})

	s.addItem(domain.MenuItem{ID: 1, RestaurantID: 1, CategoryID: 1, Name: "Burger", Price: dec("10.00"), DiscountPrice: decPtr("8.00"), IsAvailable: true})
	s.addItem(domain.MenuItem{ID: 2, RestaurantID: 1, CategoryID: 1, Name: "Fries", Price: dec("3.50"), IsAvailable: true})
	s.addItem(domain.MenuItem{ID: 3, RestaurantID: 1, CategoryID: 1, Name: "Soup", Price: dec("6.00"), IsAvailable: false})
	s.addItem(domain.MenuItem{ID: 10, RestaurantID: 2, CategoryID: 5, Name: "Margherita", Price: dec("9.00"), IsAvailable: true})

	s.addTable(domain.Table{ID: 1, RestaurantID: 1, Number: "1", Capacity: 4, Token: bistroTable, IsActive: true})
	s.addTable(domain.Table{ID: 2, RestaurantID: 2, Number: "1", Capacity: 2, Token: pizzaTable, IsActive: true})
	s.addTable(domain.Table{ID: 3, RestaurantID: 1, Number: "2", Capacity: 2, Token: closedTable, IsActive: false})
	return s
}

func newOrderStack(s *memStore, opts ...service.OrderOption) (*service.OrderService, *service.TableService) {
	tables := service.NewTableService(s, nil, service.Links{})
	return service.NewOrderService(s, s, tables, dec("0.10"), opts...), tables
}

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func (s *memStore) ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, RestaurantID: 1, Name: "Mains", Slug: "mains", IsActive: true}}, nil
}

func (s *memStore) ListMenuItems(ctx context.Context, restaurantID int) ([]domain.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.MenuItem
	for id := 1; id <= len(s.items)+10; id++ {
		if it, ok := s.items[id]; ok && it.RestaurantID == restaurantID {
			out = append(out, it)
		}
	}
	return out, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
