package memstore

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher"
)

type usageKey struct {
	voucherID  string
	customerID string
}

type VoucherStore struct {
	mu          sync.Mutex
	vouchers    map[string]model.Voucher // by normalized code
	usage       map[usageKey]int
	redemptions map[string]model.VoucherRedemption
}

func NewVoucherStore() *VoucherStore {
	return &VoucherStore{
		vouchers:    map[string]model.Voucher{},
		usage:       map[usageKey]int{},
		redemptions: map[string]model.VoucherRedemption{},
	}
}

// Put inserts or replaces a voucher.
func (s *VoucherStore) Put(v model.Voucher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vouchers[model.NormalizeVoucherCode(v.Code)] = v
}

func (s *VoucherStore) GetByCode(_ context.Context, code string) (*model.Voucher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vouchers[model.NormalizeVoucherCode(code)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *VoucherStore) GetUserUsage(_ context.Context, voucherID, customerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage[usageKey{voucherID, customerID}], nil
}

func (s *VoucherStore) FindRedemption(_ context.Context, idempotencyKey string) (*model.VoucherRedemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.redemptions[idempotencyKey]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *VoucherStore) IncrementUsage(_ context.Context, r *model.VoucherRedemption) (*model.VoucherRedemption, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.redemptions[r.IdempotencyKey]; ok {
		return &existing, true, nil
	}

	code, v, ok := s.byID(r.VoucherID)
	if !ok || !v.IsActive {
		return nil, false, voucher.ErrUsageConflict
	}
	if v.MaxUsageTotal != nil && v.CurrentUsageCount >= *v.MaxUsageTotal {
		return nil, false, voucher.ErrUsageConflict
	}
	key := usageKey{r.VoucherID, r.CustomerID}
	if s.usage[key] >= v.MaxUsagePerUser {
		return nil, false, voucher.ErrUsageConflict
	}

	v.CurrentUsageCount++
	s.vouchers[code] = v
	s.usage[key]++
	s.redemptions[r.IdempotencyKey] = *r
	return r, false, nil
}

func (s *VoucherStore) byID(id string) (string, model.Voucher, bool) {
	for code, v := range s.vouchers {
		if v.ID == id {
			return code, v, true
		}
	}
	return "", model.Voucher{}, false
}
