package service

import (
	"context"

	"opendfood/agg-svc/internal/domain"
	"opendfood/agg-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

type StoreInterface interface {
	MarkProcessed(ctx context.Context, e domain.OrderEvent) (bool, error)
	ForgetProcessed(ctx context.Context, e domain.OrderEvent) error
	RecordOrder(ctx context.Context, e domain.OrderEvent) error
	AdjustRevenue(ctx context.Context, e domain.OrderEvent, deltaCents int64) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type EventRecorder interface {
	EventProcessed(eventType, outcome string)
}

type ConsumerInterface interface {
	Start(ctx context.Context) error
	Process(ctx context.Context, e domain.OrderEvent) error
}

var (
	_ StoreInterface    = (*storage.Store)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
)
