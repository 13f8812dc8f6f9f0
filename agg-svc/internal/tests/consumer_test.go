package tests

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"opendfood/agg-svc/internal/domain"
	"opendfood/agg-svc/internal/mocks"
	"opendfood/agg-svc/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingMetrics) EventProcessed(eventType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, eventType+"/"+outcome)
}

func (r *recordingMetrics) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes...)
}

func createdEvent() domain.OrderEvent {
	return domain.OrderEvent{
		Type:         domain.EventOrderCreated,
		OrderID:      7,
		RestaurantID: 10,
		OrderType:    "dine_in",
		Status:       "pending",
		TotalCents:   1760,
		Items:        []domain.EventItem{{MenuItemID: 1, Name: "Burger", Quantity: 2}},
	}
}

func statusEvent(from, to string) domain.OrderEvent {
	return domain.OrderEvent{
		Type:         domain.EventOrderStatusChanged,
		OrderID:      7,
		RestaurantID: 10,
		FromStatus:   from,
		Status:       to,
		TotalCents:   1760,
	}
}

func TestConsumer_Process(t *testing.T) {
	tests := []struct {
		name           string
		event          domain.OrderEvent
		setupMockStore func(*mocks.StoreInterface, domain.OrderEvent)
		wantErr        bool
		wantOutcome    string
	}{
		{
			name:  "new order is counted",
			event: createdEvent(),
			setupMockStore: func(m *mocks.StoreInterface, e domain.OrderEvent) {
				m.On("MarkProcessed", mock.Anything, e).Return(true, nil)
				m.On("RecordOrder", mock.Anything, e).Return(nil)
			},
			wantOutcome: "order_created/ok",
		},
		{
			name:  "confirmation adds revenue",
			event: statusEvent("pending", "confirmed"),
			setupMockStore: func(m *mocks.StoreInterface, e domain.OrderEvent) {
				m.On("MarkProcessed", mock.Anything, e).Return(true, nil)
				m.On("AdjustRevenue", mock.Anything, e, int64(1760)).Return(nil)
			},
			wantOutcome: "order_status_changed/ok",
		},
		{
			name:  "cancelling a confirmed order removes revenue",
			event: statusEvent("preparing", "cancelled"),
			setupMockStore: func(m *mocks.StoreInterface, e domain.OrderEvent) {
				m.On("MarkProcessed", mock.Anything, e).Return(true, nil)
				m.On("AdjustRevenue", mock.Anything, e, int64(-1760)).Return(nil)
			},
			wantOutcome: "order_status_changed/ok",
		},
		{
			name:  "move inside the revenue window changes nothing",
			event: statusEvent("confirmed", "ready"),
			setupMockStore: func(m *mocks.StoreInterface, e domain.OrderEvent) {
				m.On("MarkProcessed", mock.Anything, e).Return(true, nil)
			},
			wantOutcome: "order_status_changed/ok",
		},
		{
			name:  "replayed event is skipped",
			event: createdEvent(),
			setupMockStore: func(m *mocks.StoreInterface, e domain.OrderEvent) {
				m.On("MarkProcessed", mock.Anything, e).Return(false, nil)
			},
			wantOutcome: "order_created/duplicate",
		},
		{
			name:  "failed update clears the marker",
			event: createdEvent(),
			setupMockStore: func(m *mocks.StoreInterface, e domain.OrderEvent) {
				m.On("MarkProcessed", mock.Anything, e).Return(true, nil)
				m.On("RecordOrder", mock.Anything, e).Return(errors.New("redis error"))
				m.On("ForgetProcessed", mock.Anything, e).Return(nil)
			},
			wantErr:     true,
			wantOutcome: "order_created/error",
		},
		{
			name:           "unknown event type",
			event:          domain.OrderEvent{Type: "new_review", OrderID: 1},
			setupMockStore: func(m *mocks.StoreInterface, e domain.OrderEvent) {},
			wantOutcome:    "new_review/ignored",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mockStore := mocks.NewStoreInterface(t)
			testCase.setupMockStore(mockStore, testCase.event)
			rec := &recordingMetrics{}

			consumer := service.NewConsumer(nil, mockStore, rec)
			err := consumer.Process(context.Background(), testCase.event)

			if testCase.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{testCase.wantOutcome}, rec.all())
		})
	}
}

// scriptedReader replays messages, then blocks until the context ends.
type scriptedReader struct {
	mu       sync.Mutex
	messages []kafka.Message
	errs     []error
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func TestConsumer_Start(t *testing.T) {
	event := createdEvent()
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	reader := &scriptedReader{
		errs: []error{errors.New("broker unavailable")},
		messages: []kafka.Message{
			{Value: []byte("{not json")},
			{Value: payload},
		},
	}
	mockStore := mocks.NewStoreInterface(t)
	processed := make(chan struct{})
	mockStore.On("MarkProcessed", mock.Anything, mock.Anything).Return(true, nil).Once()
	mockStore.On("RecordOrder", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.OrderID == 7 && len(e.Items) == 1
	})).Return(nil).Once().Run(func(mock.Arguments) { close(processed) })

	rec := &recordingMetrics{}
	consumer := service.NewConsumer(reader, mockStore, rec)
	consumer.Backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	select {
	case <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not processed")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.Contains(t, rec.all(), "unknown/malformed")
}

func TestOrderEvent_Day(t *testing.T) {
	e := domain.OrderEvent{
		OrderCreatedAt: time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600)),
		OccurredAt:     time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2024-03-02", e.Day())

	e.OrderCreatedAt = time.Time{}
	assert.Equal(t, "2024-03-05", e.Day())
}
