package listener

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	"github.com/fekuna/omnipos-pricing-service/internal/tier/dto"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const maxAttempts = 3

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// OrderListener books completed orders from the order service into monthly spend and points.
type OrderListener struct {
	consumer MessageReader
	uc       tier.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewOrderListener(consumer MessageReader, uc tier.UseCase, logger logger.ZapLogger) *OrderListener {
	return &OrderListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *OrderListener) Start(ctx context.Context) {
	l.logger.Info("Starting Order Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Order Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *OrderListener) processMessage(ctx context.Context, value []byte) {
	var event events.Envelope[events.OrderCompleted]
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != events.TypeOrderCompleted {
		return
	}

	l.logger.Info("Processing OrderCompleted event", zap.String("order_id", event.Payload.OrderID))

	input := &dto.CompletedOrderInput{
		OrderID:     event.Payload.OrderID,
		CustomerID:  event.Payload.CustomerID,
		Total:       event.Payload.Total,
		CompletedAt: event.Timestamp,
	}
	// Recording is idempotent per order id, so a retry after a partial failure is safe.
	for attempt := 1; ; attempt++ {
		_, err := l.uc.RecordCompletedOrder(ctx, input)
		if err == nil {
			return
		}
		permanent := errors.Is(err, tier.ErrInvalidOrder) || errors.Is(err, customer.ErrCustomerNotFound)
		if permanent || attempt == maxAttempts || ctx.Err() != nil {
			l.logger.Error("Failed to record completed order",
				zap.String("order_id", input.OrderID),
				zap.String("customer_id", input.CustomerID),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return
		}
		time.Sleep(l.backoff * time.Duration(attempt))
	}
}
