package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/shopspring/decimal"
)

type CustomerStore struct {
	mu        sync.Mutex
	customers map[string]model.Customer
	orders    map[string]model.CompletedOrder
	changes   []model.TierChange

	// FailWith makes every FindByID fail, simulating an unavailable backing store.
	FailWith error
}

func NewCustomerStore() *CustomerStore {
	return &CustomerStore{
		customers: map[string]model.Customer{},
		orders:    map[string]model.CompletedOrder{},
	}
}

// Put inserts or replaces a customer.
func (s *CustomerStore) Put(c model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *CustomerStore) FindByID(_ context.Context, id string) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *CustomerStore) UpdateClass(_ context.Context, id string, class model.CustomerClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return customer.ErrCustomerNotFound
	}
	c.CustomerClass = class
	c.UpdatedAt = time.Now()
	s.customers[id] = c
	return nil
}

func (s *CustomerStore) RecordOrder(_ context.Context, order *model.CompletedOrder, periodStart time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.OrderID]; ok {
		return false, nil
	}
	c, ok := s.customers[order.CustomerID]
	if !ok {
		return false, customer.ErrCustomerNotFound
	}
	rollPeriod(&c, periodStart)
	c.MonthlySpend = c.MonthlySpend.Add(order.Total)
	c.UpdatedAt = time.Now()
	s.customers[c.ID] = c
	s.orders[order.OrderID] = *order
	return true, nil
}

func (s *CustomerStore) AdjustSpend(_ context.Context, id string, delta decimal.Decimal, periodStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return customer.ErrCustomerNotFound
	}
	rollPeriod(&c, periodStart)
	c.MonthlySpend = decimal.Max(decimal.Zero, c.MonthlySpend.Add(delta))
	c.UpdatedAt = time.Now()
	s.customers[id] = c
	return nil
}

func (s *CustomerStore) ListStale(_ context.Context, periodStart time.Time, afterID string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, c := range s.customers {
		if c.SpendPeriodStart.Before(periodStart) && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (s *CustomerStore) ResetSpend(_ context.Context, id string, periodStart time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok || !c.SpendPeriodStart.Before(periodStart) {
		return nil
	}
	rollPeriod(&c, periodStart)
	s.customers[id] = c
	return nil
}

func (s *CustomerStore) ApplyTier(_ context.Context, id string, tierID *string, override bool, change *model.TierChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok {
		return customer.ErrCustomerNotFound
	}
	c.TierID = tierID
	c.TierOverride = override
	s.customers[id] = c
	if change != nil {
		s.changes = append(s.changes, *change)
	}
	return nil
}

func (s *CustomerStore) ListTierChanges(_ context.Context, customerID string, limit int) ([]model.TierChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TierChange
	for i := len(s.changes) - 1; i >= 0; i-- {
		if s.changes[i].CustomerID == customerID {
			out = append(out, s.changes[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func rollPeriod(c *model.Customer, periodStart time.Time) {
	if c.SpendPeriodStart.Before(periodStart) {
		c.MonthlySpend = decimal.Zero
		c.TierOverride = false
	}
	c.SpendPeriodStart = periodStart
}
