package tests

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"opendfood/logger"
	"opendfood/notify-svc/internal/domain"
	"opendfood/notify-svc/internal/mocks"
	"opendfood/notify-svc/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) EventProcessed(eventType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, eventType+"/"+outcome)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes...)
}

func createdEvent() domain.OrderEvent {
	return domain.OrderEvent{
		Type:            domain.EventOrderCreated,
		OrderID:         7,
		OrderNumber:     "ORD-20261019-AB12CD",
		RestaurantID:    1,
		RestaurantName:  "Le Bistro",
		RestaurantEmail: "kitchen@bistro.test",
		OrderType:       "dine_in",
		Total:           decimal.RequireFromString("17.60"),
		Items: []domain.EventItem{
			{Name: "Burger", Quantity: 2, Price: decimal.RequireFromString("8.00")},
		},
		OccurredAt: time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC),
	}
}

func TestNewOrderEmail(t *testing.T) {
	email := service.NewOrderEmail(createdEvent())

	assert.Equal(t, "kitchen@bistro.test", email.To)
	assert.Equal(t, "New order ORD-20261019-AB12CD", email.Subject)
	assert.Contains(t, email.Body, "Le Bistro")
	assert.Contains(t, email.Body, "Type: Dine in")
	assert.Contains(t, email.Body, "2 x Burger  16.00")
	assert.Contains(t, email.Body, "Total: 17.60")
	assert.Contains(t, email.Body, "2026-10-19 12:30 UTC")
}

func TestNotifier_Handle(t *testing.T) {
	noEmail := createdEvent()
	noEmail.RestaurantEmail = ""
	statusChanged := createdEvent()
	statusChanged.Type = "order_status_changed"

	tests := []struct {
		name    string
		event   domain.OrderEvent
		sendErr error
		sends   bool
		wantErr bool
		outcome string
	}{
		{name: "sends for a new order", event: createdEvent(), sends: true, outcome: "order_created/ok"},
		{name: "skips restaurants without email", event: noEmail, outcome: "order_created/skipped"},
		{name: "ignores status changes", event: statusChanged, outcome: "order_status_changed/ignored"},
		{name: "reports mailer failure", event: createdEvent(), sends: true, sendErr: errors.New("relay down"), wantErr: true, outcome: "order_created/error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := new(mocks.Mailer)
			rec := &recorder{}
			if tt.sends {
				mailer.On("Send", mock.Anything, mock.MatchedBy(func(e domain.Email) bool {
					return e.To == "kitchen@bistro.test"
				})).Return(tt.sendErr).Once()
			}

			n := service.NewNotifier(nil, mailer, rec, 0)
			err := n.Handle(context.Background(), tt.event)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{tt.outcome}, rec.all())
			mailer.AssertExpectations(t)
		})
	}
}

type scriptedReader struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		m := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func TestNotifier_StartLogsFailuresAndContinues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Get()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })

	first := createdEvent()
	second := createdEvent()
	second.OrderNumber = "ORD-20261019-ZZ99ZZ"
	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)

	reader := &scriptedReader{messages: []kafka.Message{
		{Value: []byte("{not json")},
		{Value: a},
		{Value: b},
	}}

	mailer := new(mocks.Mailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(e domain.Email) bool {
		return e.Subject == "New order ORD-20261019-AB12CD"
	})).Return(errors.New("relay down")).Once()
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(e domain.Email) bool {
		return e.Subject == "New order ORD-20261019-ZZ99ZZ"
	})).Return(nil).Once()

	rec := &recorder{}
	n := service.NewNotifier(reader, mailer, rec, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Start(ctx) }()

	require.Eventually(t, func() bool { return len(rec.all()) == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"unknown/malformed", "order_created/error", "order_created/ok"}, rec.all())
	failures := logs.FilterMessage("order notification failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, "ORD-20261019-AB12CD", failures[0].ContextMap()["order_number"])
	mailer.AssertExpectations(t)
}

func TestNotifier_LimiterHonoursContext(t *testing.T) {
	mailer := new(mocks.Mailer)
	mailer.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	n := service.NewNotifier(nil, mailer, nil, 1)
	require.NoError(t, n.Handle(context.Background(), createdEvent()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, n.Handle(ctx, createdEvent()))
	mailer.AssertNumberOfCalls(t, "Send", 1)
}
