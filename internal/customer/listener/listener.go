package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Invalidator drops a cached pricing context.
type Invalidator interface {
	Invalidate(ctx context.Context, customerID string)
}

// CustomerListener applies customer type changes made by other instances to this instance's
// pricing context cache.
type CustomerListener struct {
	consumer MessageReader
	pricing  Invalidator
	logger   logger.ZapLogger
}

func NewCustomerListener(consumer MessageReader, pricing Invalidator, logger logger.ZapLogger) *CustomerListener {
	return &CustomerListener{
		consumer: consumer,
		pricing:  pricing,
		logger:   logger,
	}
}

func (l *CustomerListener) Start(ctx context.Context) {
	l.logger.Info("Starting Customer Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Customer Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *CustomerListener) processMessage(ctx context.Context, value []byte) {
	var event events.Envelope[events.CustomerTypeChanged]
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != events.TypeCustomerTypeChanged || event.Payload.CustomerID == "" {
		return
	}

	l.logger.Debug("Processing CustomerTypeChanged event", zap.String("customer_id", event.Payload.CustomerID))
	l.pricing.Invalidate(ctx, event.Payload.CustomerID)
}
