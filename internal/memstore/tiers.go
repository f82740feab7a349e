package memstore

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type TierStore struct {
	mu    sync.Mutex
	tiers []model.Tier
}

func NewTierStore(tiers ...model.Tier) *TierStore {
	return &TierStore{tiers: tiers}
}

// Set replaces the configured tiers.
func (s *TierStore) Set(tiers ...model.Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiers = tiers
}

func (s *TierStore) ListActiveTiers(_ context.Context) ([]model.Tier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Tier
	for _, t := range s.tiers {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}
