package memstore

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet/dto"
	"github.com/shopspring/decimal"
)

type WalletStore struct {
	mu       sync.Mutex
	ledger   []model.WalletTransaction
	balances map[string]decimal.Decimal
}

func NewWalletStore() *WalletStore {
	return &WalletStore{balances: map[string]decimal.Decimal{}}
}

func (s *WalletStore) Balance(_ context.Context, customerID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[customerID], nil
}

func (s *WalletStore) FindByReference(_ context.Context, customerID, reference string) (*model.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.ledger {
		if t.CustomerID == customerID && t.Reference != nil && *t.Reference == reference {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

// List returns newest first, like the postgres repository.
func (s *WalletStore) List(_ context.Context, f *dto.HistoryFilters) ([]model.WalletTransaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.WalletTransaction
	for i := len(s.ledger) - 1; i >= 0; i-- {
		t := s.ledger[i]
		if t.CustomerID != f.CustomerID || (f.Type != "" && string(t.Type) != f.Type) {
			continue
		}
		all = append(all, t)
	}
	total := len(all)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (s *WalletStore) AppendWithBalance(_ context.Context, txn *model.WalletTransaction, balanceBefore decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.balances[txn.CustomerID].Equal(balanceBefore) {
		return wallet.ErrBalanceChanged
	}
	s.ledger = append(s.ledger, *txn)
	s.balances[txn.CustomerID] = txn.BalanceAfter
	return nil
}

// Ledger returns a customer's entries in creation order.
func (s *WalletStore) Ledger(customerID string) []model.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.WalletTransaction
	for _, t := range s.ledger {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out
}
