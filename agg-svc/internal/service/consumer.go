package service

import (
	"context"
	"encoding/json"
	"time"

	"opendfood/agg-svc/internal/domain"
	"opendfood/logger"

	"go.uber.org/zap"
)

type Consumer struct {
	Reader  MessageReader
	Store   StoreInterface
	Metrics EventRecorder
	// Backoff is the pause after a failed read.
	Backoff time.Duration
}

func NewConsumer(reader MessageReader, store StoreInterface, metrics EventRecorder) *Consumer {
	return &Consumer{
		Reader:  reader,
		Store:   store,
		Metrics: metrics,
		Backoff: time.Second,
	}
}

// Start reads until ctx is cancelled. Bad payloads and failed updates are
// logged and skipped.
func (c *Consumer) Start(ctx context.Context) error {
	log := logger.Get()
	log.Info("starting aggregation consumer")

	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("aggregation consumer stopped")
				return nil
			}
			log.Error("error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.Backoff):
			}
			continue
		}

		var event domain.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Warn("error unmarshaling message", zap.Int64("offset", message.Offset), zap.Error(err))
			c.record("unknown", "malformed")
			continue
		}

		if err := c.Process(ctx, event); err != nil {
			log.Error("error processing event",
				zap.String("type", event.Type), zap.Int("order_id", event.OrderID), zap.Error(err))
		}
	}
}

func (c *Consumer) Process(ctx context.Context, e domain.OrderEvent) error {
	if e.Type != domain.EventOrderCreated && e.Type != domain.EventOrderStatusChanged {
		c.record(e.Type, "ignored")
		return nil
	}

	fresh, err := c.Store.MarkProcessed(ctx, e)
	if err != nil {
		c.record(e.Type, "error")
		return err
	}
	if !fresh {
		c.record(e.Type, "duplicate")
		return nil
	}

	if err := c.apply(ctx, e); err != nil {
		if ferr := c.Store.ForgetProcessed(ctx, e); ferr != nil {
			logger.FromContext(ctx).Warn("failed to clear dedup marker", zap.Error(ferr))
		}
		c.record(e.Type, "error")
		return err
	}

	logger.FromContext(ctx).Debug("event aggregated",
		zap.String("type", e.Type), zap.Int("restaurant_id", e.RestaurantID), zap.Int("order_id", e.OrderID))
	c.record(e.Type, "ok")
	return nil
}

func (c *Consumer) apply(ctx context.Context, e domain.OrderEvent) error {
	if e.Type == domain.EventOrderCreated {
		if err := c.Store.RecordOrder(ctx, e); err != nil {
			return err
		}
	}
	if delta := e.RevenueDelta(); delta != 0 {
		return c.Store.AdjustRevenue(ctx, e, delta)
	}
	return nil
}

func (c *Consumer) record(eventType, outcome string) {
	if c.Metrics != nil {
		c.Metrics.EventProcessed(eventType, outcome)
	}
}
