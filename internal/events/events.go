// Package events defines the typed messages exchanged between pricing components and the
// bus that delivers them in-process.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

const (
	TypeCustomerTypeChanged = "CustomerTypeChanged"
	TypeTierChanged         = "TierChanged"
	TypeOrderCompleted      = "OrderCompleted"
)

// Envelope is the wire shape on Kafka topics.
type Envelope[T any] struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type CustomerTypeChanged struct {
	CustomerID string              `json:"customer_id"`
	NewType    model.CustomerClass `json:"new_type"`
}

type TierChanged struct {
	CustomerID string                 `json:"customer_id"`
	FromTierID *string                `json:"from_tier_id"`
	ToTierID   *string                `json:"to_tier_id"`
	Reason     model.TierChangeReason `json:"reason"`
}

type OrderCompleted struct {
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total"`
}

// Bus delivers events synchronously: Publish returns after every subscriber ran.
type Bus struct {
	mu          sync.RWMutex
	typeChanged []func(context.Context, CustomerTypeChanged)
	tierChanged []func(context.Context, TierChanged)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) OnCustomerTypeChanged(fn func(context.Context, CustomerTypeChanged)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.typeChanged = append(b.typeChanged, fn)
}

func (b *Bus) OnTierChanged(fn func(context.Context, TierChanged)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tierChanged = append(b.tierChanged, fn)
}

func (b *Bus) PublishCustomerTypeChanged(ctx context.Context, evt CustomerTypeChanged) {
	b.mu.RLock()
	subs := b.typeChanged
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, evt)
	}
}

func (b *Bus) PublishTierChanged(ctx context.Context, evt TierChanged) {
	b.mu.RLock()
	subs := b.tierChanged
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, evt)
	}
}
