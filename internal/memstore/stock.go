package memstore

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-pricing-service/internal/inventory"
	invdto "github.com/fekuna/omnipos-pricing-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

func (s *CatalogStore) AdjustStock(_ context.Context, m *model.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := 0, false
	for _, p := range s.products {
		for _, link := range p.Components {
			if link.Variant.ID == m.VariantID {
				current, found = link.Variant.StockQuantity, true
			}
		}
	}
	if !found {
		return inventory.ErrVariantNotFound
	}
	after := current + m.QuantityChange
	if after < 0 {
		return inventory.ErrInsufficientStock
	}

	for id, p := range s.products {
		for i := range p.Components {
			if p.Components[i].Variant.ID == m.VariantID {
				p.Components[i].Variant.StockQuantity = after
			}
		}
		s.products[id] = p
	}
	m.QuantityBefore, m.QuantityAfter = current, after
	s.movements = append(s.movements, *m)
	return nil
}

func (s *CatalogStore) ListMovements(_ context.Context, f *invdto.MovementFilters) ([]model.StockMovement, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.StockMovement
	for _, m := range s.movements {
		if f.VariantID != "" && m.VariantID != f.VariantID {
			continue
		}
		if f.MovementType != "" && string(m.MovementType) != f.MovementType {
			continue
		}
		if f.StartDate != nil && m.CreatedAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && !m.CreatedAt.Before(*f.EndDate) {
			continue
		}
		out = append(out, m)
	}
	// Newest first; appends are chronological.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	total := len(out)
	if f.PageSize > 0 {
		start := (max(f.Page, 1) - 1) * f.PageSize
		if start >= len(out) {
			return []model.StockMovement{}, total, nil
		}
		out = out[start:min(start+f.PageSize, len(out))]
	}
	return out, total, nil
}

func (s *CatalogStore) ProductIDsForVariant(_ context.Context, variantID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, p := range s.products {
		for _, link := range p.Components {
			if link.VariantID == variantID || link.Variant.ID == variantID {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}
