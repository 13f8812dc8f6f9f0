package service

import (
	"context"

	"opendfood/order-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TenantRepository interface {
	GetActiveRestaurantBySubdomain(ctx context.Context, subdomain string) (*domain.Restaurant, error)
	GetRestaurant(ctx context.Context, id int) (*domain.Restaurant, error)
	ListRestaurantsByOwner(ctx context.Context, ownerID string) ([]domain.Restaurant, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error
	UpdateRestaurant(ctx context.Context, rest *domain.Restaurant) error
	SetRestaurantActive(ctx context.Context, id int, active bool) (int64, error)
	SaveRestaurantQR(ctx context.Context, id int, qr []byte) error
	GetRestaurantQR(ctx context.Context, id int) ([]byte, error)
}

type MenuRepository interface {
	ListCategories(ctx context.Context, restaurantID int) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	ListMenuItems(ctx context.Context, restaurantID int) ([]domain.MenuItem, error)
	GetMenuItems(ctx context.Context, restaurantID int, ids []int) (map[int]domain.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *domain.MenuItem) error
	UpdateMenuItem(ctx context.Context, item *domain.MenuItem) error
	SetItemAvailability(ctx context.Context, restaurantID, itemID int, available bool) (int64, error)
	DeleteMenuItem(ctx context.Context, restaurantID, itemID int) (int64, error)
}

type TableRepository interface {
	CreateTable(ctx context.Context, t *domain.Table) error
	ListTables(ctx context.Context, restaurantID int) ([]domain.Table, error)
	GetTable(ctx context.Context, restaurantID, tableID int) (*domain.Table, error)
	GetTableByToken(ctx context.Context, restaurantID int, token uuid.UUID) (*domain.Table, error)
	SetTableActive(ctx context.Context, restaurantID, tableID int, active bool) (int64, error)
	DeleteTable(ctx context.Context, restaurantID, tableID int) (int64, error)
	SaveTableQR(ctx context.Context, tableID int, qr []byte) error
	GetTableQR(ctx context.Context, restaurantID, tableID int) ([]byte, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order, lines []domain.LineRequest, taxRate decimal.Decimal) error
	GetOrder(ctx context.Context, restaurantID, orderID int) (*domain.Order, error)
	ListOrders(ctx context.Context, restaurantID int, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, restaurantID, orderID int, from, to domain.Status) (int64, error)
	ReplaceOrderLines(ctx context.Context, restaurantID, orderID int, edits []domain.LineEdit, taxRate decimal.Decimal) (*domain.Order, error)
	DeleteOrder(ctx context.Context, restaurantID, orderID int) (int64, error)
}

type MenuCache interface {
	GetMenu(ctx context.Context, restaurantID int) (*domain.Menu, error)
	SetMenu(ctx context.Context, menu *domain.Menu) error
	InvalidateMenu(ctx context.Context, restaurantID int) error
}

type SubmissionGuard interface {
	ClaimSubmission(ctx context.Context, restaurantID int, key string) (bool, error)
	ReleaseSubmission(ctx context.Context, restaurantID int, key string) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

// TableResolver is the part of the table service the order path needs.
type TableResolver interface {
	ResolveTable(ctx context.Context, tenant *domain.Restaurant, token string) (*domain.Table, error)
	Get(ctx context.Context, tenant *domain.Restaurant, tableID int) (*domain.Table, error)
}

type OrderMetrics interface {
	OrderCreated(orderType string)
	SubmitFailed(reason string)
}

type TenantResolverInterface interface {
	SubdomainFromHost(host string) (string, bool)
	Resolve(ctx context.Context, host string) (*domain.Restaurant, error)
}

type RestaurantServiceInterface interface {
	Create(ctx context.Context, rest *domain.Restaurant) error
	Get(ctx context.Context, id int) (*domain.Restaurant, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Restaurant, error)
	Update(ctx context.Context, rest *domain.Restaurant) error
	SetActive(ctx context.Context, id int, active bool) error
	QRCode(ctx context.Context, id int) ([]byte, error)
}

type MenuServiceInterface interface {
	Menu(ctx context.Context, tenant *domain.Restaurant) (*domain.Menu, error)
	Categories(ctx context.Context, tenant *domain.Restaurant) ([]domain.Category, error)
	CreateCategory(ctx context.Context, tenant *domain.Restaurant, c *domain.Category) error
	Items(ctx context.Context, tenant *domain.Restaurant) ([]domain.MenuItem, error)
	CreateItem(ctx context.Context, tenant *domain.Restaurant, item *domain.MenuItem) error
	UpdateItem(ctx context.Context, tenant *domain.Restaurant, item *domain.MenuItem) error
	SetAvailability(ctx context.Context, tenant *domain.Restaurant, itemID int, available bool) error
	DeleteItem(ctx context.Context, tenant *domain.Restaurant, itemID int) error
}

type TableServiceInterface interface {
	TableResolver
	Create(ctx context.Context, tenant *domain.Restaurant, t *domain.Table) error
	List(ctx context.Context, tenant *domain.Restaurant) ([]domain.Table, error)
	SetActive(ctx context.Context, tenant *domain.Restaurant, tableID int, active bool) error
	RegenerateQR(ctx context.Context, tenant *domain.Restaurant, tableID int) ([]byte, error)
	QRCode(ctx context.Context, tenant *domain.Restaurant, tableID int) ([]byte, error)
	Delete(ctx context.Context, tenant *domain.Restaurant, tableID int) error
}

type OrderServiceInterface interface {
	Submit(ctx context.Context, tenant *domain.Restaurant, req SubmitRequest) (*domain.Order, error)
	CreateManual(ctx context.Context, tenant *domain.Restaurant, req ManualOrderRequest) (*domain.Order, error)
	Get(ctx context.Context, tenant *domain.Restaurant, orderID int) (*domain.Order, error)
	List(ctx context.Context, tenant *domain.Restaurant, filter domain.OrderFilter) ([]domain.Order, error)
	ChangeStatus(ctx context.Context, tenant *domain.Restaurant, orderID int, status string) (*domain.Order, error)
	UpdateLines(ctx context.Context, tenant *domain.Restaurant, orderID int, edits []domain.LineEdit) (*domain.Order, error)
	Delete(ctx context.Context, tenant *domain.Restaurant, orderID int) error
}

var (
	_ TenantResolverInterface    = (*TenantResolver)(nil)
	_ RestaurantServiceInterface = (*RestaurantService)(nil)
	_ MenuServiceInterface       = (*MenuService)(nil)
	_ TableServiceInterface      = (*TableService)(nil)
	_ OrderServiceInterface      = (*OrderService)(nil)
)
