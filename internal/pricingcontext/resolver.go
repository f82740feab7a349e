// Package pricingcontext decides which price column a customer sees. Every consumer goes
// through Resolver so anonymous users, missing profiles and store outages all get the same
// retail fallback.
package pricingcontext

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"go.uber.org/zap"
)

// CustomerLookup returns nil, nil for an unknown customer.
type CustomerLookup interface {
	FindByID(ctx context.Context, id string) (*model.Customer, error)
}

// Resolution is a resolved context. Degraded is set when the customer store failed and the
// retail fallback was used instead; Warning carries the cause.
type Resolution struct {
	Context  model.PricingContext
	Degraded bool
	Warning  error
}

type Resolver struct {
	customers CustomerLookup
	cache     Cache
	logger    logger.ZapLogger
	timeout   time.Duration

	// epoch moves on every invalidation; a lookup that started before one must not
	// repopulate the cache with what it read.
	epoch atomic.Uint64
}

func NewResolver(customers CustomerLookup, cache Cache, lookupTimeout time.Duration, log logger.ZapLogger) *Resolver {
	return &Resolver{
		customers: customers,
		cache:     cache,
		logger:    log,
		timeout:   lookupTimeout,
	}
}

// Resolve never fails. An empty customerID means an anonymous visitor.
func (r *Resolver) Resolve(ctx context.Context, customerID string) Resolution {
	if customerID == "" {
		return Resolution{Context: model.RetailContext()}
	}

	if pc, ok, err := r.cache.Get(ctx, customerID); err != nil {
		r.logger.Warn("pricing context cache read failed", zap.String("customer_id", customerID), zap.Error(err))
	} else if ok {
		return Resolution{Context: pc}
	}

	epoch := r.epoch.Load()
	lookupCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	c, err := r.customers.FindByID(lookupCtx, customerID)
	if err != nil {
		warning := fmt.Errorf("customer lookup for pricing context: %w", err)
		r.logger.Warn("pricing context degraded to retail",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
		return Resolution{Context: model.RetailContext(), Degraded: true, Warning: warning}
	}

	pc := model.RetailContext()
	if c != nil {
		pc = model.ContextFor(c.CustomerClass)
	}

	r.store(ctx, customerID, pc, epoch)
	return Resolution{Context: pc}
}

// store caches pc unless an invalidation happened since the lookup started. Invalidate bumps
// the epoch before it deletes, so an invalidation that lands between the check and the write is
// seen by the second check and the write is undone.
func (r *Resolver) store(ctx context.Context, customerID string, pc model.PricingContext, epoch uint64) {
	if r.epoch.Load() != epoch {
		return
	}
	if err := r.cache.Set(ctx, customerID, pc); err != nil {
		r.logger.Warn("pricing context cache write failed", zap.String("customer_id", customerID), zap.Error(err))
		return
	}
	if r.epoch.Load() == epoch {
		return
	}
	if err := r.cache.Delete(ctx, customerID); err != nil {
		r.logger.Error("failed to drop stale pricing context", zap.String("customer_id", customerID), zap.Error(err))
	}
}

// Invalidate drops the cached context so the next Resolve reads the store.
func (r *Resolver) Invalidate(ctx context.Context, customerID string) {
	r.epoch.Add(1)
	if err := r.cache.Delete(ctx, customerID); err != nil {
		r.logger.Error("failed to invalidate pricing context", zap.String("customer_id", customerID), zap.Error(err))
		return
	}
	r.logger.Debug("pricing context invalidated", zap.String("customer_id", customerID))
}

// Subscribe invalidates on every CustomerTypeChanged published on bus.
func (r *Resolver) Subscribe(bus *events.Bus) {
	bus.OnCustomerTypeChanged(func(ctx context.Context, evt events.CustomerTypeChanged) {
		r.Invalidate(ctx, evt.CustomerID)
	})
}
