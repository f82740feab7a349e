package listener

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	"github.com/fekuna/omnipos-pricing-service/internal/tier/dto"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type stubTiers struct {
	tier.UseCase
	calls []dto.CompletedOrderInput
	errs  []error
}

func (s *stubTiers) RecordCompletedOrder(_ context.Context, input *dto.CompletedOrderInput) (*dto.OrderRecorded, error) {
	s.calls = append(s.calls, *input)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &dto.OrderRecorded{Applied: true}, nil
}

// queueReader hands out messages and then blocks until the context ends.
type queueReader struct {
	msgs []kafka.Message
}

func (r *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func encode(t *testing.T, v any) kafka.Message {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return kafka.Message{Value: data}
}

func TestOrderListenerRecordsCompletedOrders(t *testing.T) {
	at := time.Date(2026, time.May, 2, 8, 0, 0, 0, time.UTC)
	reader := &queueReader{msgs: []kafka.Message{
		{Value: []byte("not json")},
		encode(t, events.Envelope[events.CustomerTypeChanged]{EventType: events.TypeCustomerTypeChanged}),
		encode(t, events.Envelope[events.OrderCompleted]{
			EventID:   "e1",
			EventType: events.TypeOrderCompleted,
			Payload:   events.OrderCompleted{OrderID: "o1", CustomerID: "c1", Total: decimal.RequireFromString("99.90")},
			Timestamp: at,
		}),
	}}
	uc := &stubTiers{errs: []error{errors.New("connection reset"), nil}}
	l := NewOrderListener(reader, uc, logger.NewNop())
	l.backoff = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	l.Start(ctx)

	if len(uc.calls) != 2 {
		t.Fatalf("calls = %d, want one retry after the transient failure", len(uc.calls))
	}
	got := uc.calls[1]
	if got.OrderID != "o1" || got.CustomerID != "c1" || !got.Total.Equal(decimal.RequireFromString("99.9")) || !got.CompletedAt.Equal(at) {
		t.Errorf("input = %+v", got)
	}
}

func TestOrderListenerDropsPermanentFailures(t *testing.T) {
	uc := &stubTiers{errs: []error{tier.ErrInvalidOrder}}
	l := NewOrderListener(&queueReader{}, uc, logger.NewNop())
	l.backoff = time.Millisecond

	l.processMessage(context.Background(), encode(t, events.Envelope[events.OrderCompleted]{
		EventType: events.TypeOrderCompleted,
		Payload:   events.OrderCompleted{OrderID: "o2", Total: decimal.NewFromInt(-1)},
	}).Value)

	if len(uc.calls) != 1 {
		t.Errorf("calls = %d, want no retry", len(uc.calls))
	}
}

