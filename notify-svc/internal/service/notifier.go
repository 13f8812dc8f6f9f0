package service

import (
	"context"
	"encoding/json"
	"time"

	"opendfood/logger"
	"opendfood/notify-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Mailer delivers one email. Implementations decide the transport.
type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

type EventRecorder interface {
	EventProcessed(eventType, outcome string)
}

var _ MessageReader = (*kafka.Reader)(nil)

type Notifier struct {
	Reader  MessageReader
	Mailer  Mailer
	Metrics EventRecorder
	// Limiter paces outbound mail; nil means unlimited.
	Limiter *rate.Limiter
	Backoff time.Duration
}

func NewNotifier(reader MessageReader, mailer Mailer, metrics EventRecorder, perMinute int) *Notifier {
	n := &Notifier{Reader: reader, Mailer: mailer, Metrics: metrics, Backoff: time.Second}
	if perMinute > 0 {
		n.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return n
}

// Start reads order events until ctx is cancelled. A failed email is logged
// and dropped; it never blocks the stream.
func (n *Notifier) Start(ctx context.Context) error {
	log := logger.Get()
	log.Info("starting notification consumer")

	for {
		message, err := n.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("notification consumer stopped")
				return nil
			}
			log.Error("error reading message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(n.Backoff):
			}
			continue
		}

		var event domain.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Warn("error unmarshaling message", zap.Int64("offset", message.Offset), zap.Error(err))
			n.record("unknown", "malformed")
			continue
		}

		if err := n.Handle(ctx, event); err != nil && ctx.Err() == nil {
			log.Error("order notification failed",
				zap.Int("restaurant_id", event.RestaurantID),
				zap.String("order_number", event.OrderNumber),
				zap.Error(err))
		}
	}
}

// Handle emails the restaurant about a new order. Other events and
// restaurants without an address are skipped.
func (n *Notifier) Handle(ctx context.Context, e domain.OrderEvent) error {
	if e.Type != domain.EventOrderCreated {
		n.record(e.Type, "ignored")
		return nil
	}
	if e.RestaurantEmail == "" {
		logger.FromContext(ctx).Debug("restaurant has no email, skipping", zap.Int("restaurant_id", e.RestaurantID))
		n.record(e.Type, "skipped")
		return nil
	}

	if n.Limiter != nil {
		if err := n.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	if err := n.Mailer.Send(ctx, NewOrderEmail(e)); err != nil {
		n.record(e.Type, "error")
		return err
	}
	logger.FromContext(ctx).Info("order notification sent",
		zap.Int("restaurant_id", e.RestaurantID), zap.String("order_number", e.OrderNumber))
	n.record(e.Type, "ok")
	return nil
}

func (n *Notifier) record(eventType, outcome string) {
	if n.Metrics != nil {
		n.Metrics.EventProcessed(eventType, outcome)
	}
}
