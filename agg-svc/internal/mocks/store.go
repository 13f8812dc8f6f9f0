package mocks

import (
	"context"

	"opendfood/agg-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type StoreInterface struct {
	mock.Mock
}

func (m *StoreInterface) MarkProcessed(ctx context.Context, e domain.OrderEvent) (bool, error) {
	args := m.Called(ctx, e)
	return args.Bool(0), args.Error(1)
}

func (m *StoreInterface) ForgetProcessed(ctx context.Context, e domain.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *StoreInterface) RecordOrder(ctx context.Context, e domain.OrderEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *StoreInterface) AdjustRevenue(ctx context.Context, e domain.OrderEvent, deltaCents int64) error {
	return m.Called(ctx, e, deltaCents).Error(0)
}

// NewStoreInterface registers a cleanup that asserts the expectations.
func NewStoreInterface(t interface {
	mock.TestingT
	Cleanup(func())
}) *StoreInterface {
	m := &StoreInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
