package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"opendfood/logger"
	"opendfood/order-svc/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 3

type SubmitRequest struct {
	TableToken     string               `json:"table_token"`
	OrderType      string               `json:"order_type"`
	CustomerName   string               `json:"customer_name,omitempty"`
	CustomerPhone  string               `json:"customer_phone,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	Items          []domain.LineRequest `json:"items"`
	IdempotencyKey string               `json:"-"`
}

type ManualOrderRequest struct {
	TableID       *int                 `json:"table_id,omitempty"`
	OrderType     string               `json:"order_type"`
	CustomerName  string               `json:"customer_name,omitempty"`
	CustomerPhone string               `json:"customer_phone,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	Items         []domain.LineRequest `json:"items"`
}

type OrderService struct {
	repo           OrderRepository
	menu           MenuRepository
	tables         TableResolver
	guard          SubmissionGuard
	publisher      EventPublisher
	metrics        OrderMetrics
	defaultTaxRate decimal.Decimal
	newNumber      func() string
}

type OrderOption func(*OrderService)

func WithSubmissionGuard(g SubmissionGuard) OrderOption {
	return func(s *OrderService) { s.guard = g }
}

func WithPublisher(p EventPublisher) OrderOption {
	return func(s *OrderService) { s.publisher = p }
}

func WithMetrics(m OrderMetrics) OrderOption {
	return func(s *OrderService) { s.metrics = m }
}

func WithOrderNumbers(gen func() string) OrderOption {
	return func(s *OrderService) { s.newNumber = gen }
}

func NewOrderService(repo OrderRepository, menu MenuRepository, tables TableResolver, taxRate decimal.Decimal, opts ...OrderOption) *OrderService {
	s := &OrderService{
		repo:           repo,
		menu:           menu,
		tables:         tables,
		defaultTaxRate: taxRate,
		newNumber:      NewOrderNumber,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) taxRate(tenant *domain.Restaurant) decimal.Decimal {
	if tenant.TaxRate != nil {
		return *tenant.TaxRate
	}
	return s.defaultTaxRate
}

// Submit is the customer order path: shape checks, table resolution, catalog
// validation, then a single transactional insert. Tenant must already be
// resolved by the caller.
func (s *OrderService) Submit(ctx context.Context, tenant *domain.Restaurant, req SubmitRequest) (order *domain.Order, err error) {
	defer func() {
		if err != nil && s.metrics != nil {
			s.metrics.SubmitFailed(FailureReason(err))
		}
	}()

	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	orderType, err := domain.ParseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateLines(req.Items); err != nil {
		return nil, err
	}

	table, err := s.tables.ResolveTable(ctx, tenant, req.TableToken)
	if err != nil {
		return nil, err
	}

	if key := strings.TrimSpace(req.IdempotencyKey); key != "" && s.guard != nil {
		claimed, gerr := s.guard.ClaimSubmission(ctx, tenant.ID, key)
		switch {
		case gerr != nil:
			logger.FromContext(ctx).Warn("submission guard unavailable", zap.Error(gerr))
		case !claimed:
			return nil, domain.ErrDuplicateSubmission
		default:
			defer func() {
				if err != nil {
					if rerr := s.guard.ReleaseSubmission(ctx, tenant.ID, key); rerr != nil {
						logger.FromContext(ctx).Warn("submission guard release failed", zap.Error(rerr))
					}
				}
			}()
		}
	}

	order = &domain.Order{
		RestaurantID:  tenant.ID,
		TableID:       &table.ID,
		OrderType:     orderType,
		Status:        domain.StatusPending,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Notes:         req.Notes,
	}
	if err := s.place(ctx, tenant, order, req.Items); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateManual is the admin counterpart of Submit. The table is optional and
// may be inactive.
func (s *OrderService) CreateManual(ctx context.Context, tenant *domain.Restaurant, req ManualOrderRequest) (*domain.Order, error) {
	orderType, err := domain.ParseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateLines(req.Items); err != nil {
		return nil, err
	}

	order := &domain.Order{
		RestaurantID:  tenant.ID,
		OrderType:     orderType,
		Status:        domain.StatusPending,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Notes:         req.Notes,
	}
	if req.TableID != nil {
		table, err := s.tables.Get(ctx, tenant, *req.TableID)
		if err != nil {
			return nil, err
		}
		order.TableID = &table.ID
	}

	if err := s.place(ctx, tenant, order, req.Items); err != nil {
		return nil, err
	}
	return order, nil
}

// place pre-validates lines outside the transaction, then persists. The
// repository validates again under FOR SHARE so a concurrent catalog change
// cannot slip in between.
func (s *OrderService) place(ctx context.Context, tenant *domain.Restaurant, order *domain.Order, lines []domain.LineRequest) error {
	ids := make([]int, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}
	items, err := s.menu.GetMenuItems(ctx, tenant.ID, ids)
	if err != nil {
		return fmt.Errorf("load menu items: %w", err)
	}
	if err := domain.CheckLines(lines, items); err != nil {
		return err
	}

	taxRate := s.taxRate(tenant)
	for attempt := 1; ; attempt++ {
		order.OrderNumber = s.newNumber()
		err = s.repo.CreateOrder(ctx, order, lines, taxRate)
		if !errors.Is(err, domain.ErrDuplicateOrderNumber) || attempt == maxOrderNumberAttempts {
			break
		}
		logger.FromContext(ctx).Warn("order number collision, retrying", zap.String("order_number", order.OrderNumber))
	}
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Info("order created",
		zap.Int("restaurant_id", tenant.ID),
		zap.Int("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.StringFixed(2)),
	)
	if s.metrics != nil {
		s.metrics.OrderCreated(string(order.OrderType))
	}
	s.publish(ctx, domain.NewOrderEvent(domain.EventOrderCreated, order, tenant))
	return nil
}

// publish never fails the caller: the order is already committed.
func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Error("failed to publish order event",
			zap.String("type", event.Type), zap.Int("order_id", event.OrderID), zap.Error(err))
	}
}

func (s *OrderService) Get(ctx context.Context, tenant *domain.Restaurant, orderID int) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, tenant.ID, orderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	return order, err
}

func (s *OrderService) List(ctx context.Context, tenant *domain.Restaurant, filter domain.OrderFilter) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx, tenant.ID, filter)
}

// ChangeStatus parses raw against the status enumeration and applies the
// move if the lifecycle allows it. The stored order is untouched on any
// error.
func (s *OrderService) ChangeStatus(ctx context.Context, tenant *domain.Restaurant, orderID int, raw string) (*domain.Order, error) {
	to, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, err
	}

	order, err := s.Get(ctx, tenant, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := from.Transition(to); err != nil {
		return nil, err
	}

	rows, err := s.repo.UpdateOrderStatus(ctx, tenant.ID, orderID, from, to)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: order %d changed concurrently", domain.ErrInvalidTransition, orderID)
	}

	order.Status = to
	logger.FromContext(ctx).Info("order status changed",
		zap.Int("order_id", orderID), zap.String("from", string(from)), zap.String("to", string(to)))

	event := domain.NewOrderEvent(domain.EventOrderStatusChanged, order, tenant)
	event.FromStatus = from
	s.publish(ctx, event)
	return order, nil
}

func (s *OrderService) UpdateLines(ctx context.Context, tenant *domain.Restaurant, orderID int, edits []domain.LineEdit) (*domain.Order, error) {
	if len(edits) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	order, err := s.repo.ReplaceOrderLines(ctx, tenant.ID, orderID, edits, s.taxRate(tenant))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	return order, err
}

func (s *OrderService) Delete(ctx context.Context, tenant *domain.Restaurant, orderID int) error {
	rows, err := s.repo.DeleteOrder(ctx, tenant.ID, orderID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// FailureReason is a short metric label for a submission error.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		return "tenant_not_found"
	case errors.Is(err, domain.ErrTableNotFound), errors.Is(err, domain.ErrTableInactive):
		return "invalid_table"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, domain.ErrItemUnavailable):
		return "item_unavailable"
	case errors.Is(err, domain.ErrEmptyOrder), errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidOrderType):
		return "invalid_request"
	case errors.Is(err, domain.ErrDuplicateSubmission):
		return "duplicate_submission"
	default:
		return "internal"
	}
}
