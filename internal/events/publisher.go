package events

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JSONPublisher is implemented by broker.KafkaProducer.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, topic, key string, value any) error
}

type Topics struct {
	Customers string
	Loyalty   string
}

// Forwarder subscribes to a Bus and mirrors events to Kafka so other instances see them.
type Forwarder struct {
	pub    JSONPublisher
	topics Topics
	logger logger.ZapLogger
}

func NewForwarder(pub JSONPublisher, topics Topics, log logger.ZapLogger) *Forwarder {
	return &Forwarder{pub: pub, topics: topics, logger: log}
}

// Attach registers the forwarder on the bus.
func (f *Forwarder) Attach(bus *Bus) {
	bus.OnCustomerTypeChanged(func(ctx context.Context, evt CustomerTypeChanged) {
		f.publish(ctx, f.topics.Customers, evt.CustomerID, TypeCustomerTypeChanged, evt)
	})
	bus.OnTierChanged(func(ctx context.Context, evt TierChanged) {
		f.publish(ctx, f.topics.Loyalty, evt.CustomerID, TypeTierChanged, evt)
	})
}

func (f *Forwarder) publish(ctx context.Context, topic, key, eventType string, payload any) {
	env := Envelope[any]{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	if err := f.pub.PublishJSON(ctx, topic, key, env); err != nil {
		// Local subscribers already ran; other instances catch up through cache TTL.
		f.logger.Error("failed to forward event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
