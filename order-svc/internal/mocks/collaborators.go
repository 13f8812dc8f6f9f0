package mocks

import (
	"context"

	"opendfood/order-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MenuCache struct {
	mock.Mock
}

func (m *MenuCache) GetMenu(ctx context.Context, restaurantID int) (*domain.Menu, error) {
	args := m.Called(ctx, restaurantID)
	if v := args.Get(0); v != nil {
		return v.(*domain.Menu), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MenuCache) SetMenu(ctx context.Context, menu *domain.Menu) error {
	return m.Called(ctx, menu).Error(0)
}

func (m *MenuCache) InvalidateMenu(ctx context.Context, restaurantID int) error {
	return m.Called(ctx, restaurantID).Error(0)
}

type SubmissionGuard struct {
	mock.Mock
}

func (m *SubmissionGuard) ClaimSubmission(ctx context.Context, restaurantID int, key string) (bool, error) {
	args := m.Called(ctx, restaurantID, key)
	return args.Bool(0), args.Error(1)
}

func (m *SubmissionGuard) ReleaseSubmission(ctx context.Context, restaurantID int, key string) error {
	return m.Called(ctx, restaurantID, key).Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

type QRGenerator struct {
	mock.Mock
}

func (m *QRGenerator) Encode(content string) ([]byte, error) {
	args := m.Called(content)
	return bytesOrNil(args.Get(0)), args.Error(1)
}

type OrderMetrics struct {
	mock.Mock
}

func (m *OrderMetrics) OrderCreated(orderType string) {
	m.Called(orderType)
}

func (m *OrderMetrics) SubmitFailed(reason string) {
	m.Called(reason)
}
