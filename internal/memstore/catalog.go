package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type CatalogStore struct {
	mu        sync.Mutex
	products  map[string]model.Product
	movements []model.StockMovement
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{products: map[string]model.Product{}}
}

// Put inserts or replaces a product together with its components.
func (s *CatalogStore) Put(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
}

// SetStock changes a variant's stock on every product it is attached to.
func (s *CatalogStore) SetStock(variantID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.products {
		for i := range p.Components {
			if p.Components[i].Variant.ID == variantID {
				p.Components[i].Variant.StockQuantity = qty
			}
		}
		s.products[id] = p
	}
}

func (s *CatalogStore) GetProduct(_ context.Context, id string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	out := cloneProduct(p)
	return &out, nil
}

func (s *CatalogStore) GetVariant(_ context.Context, id string) (*model.ComponentVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		for _, link := range p.Components {
			if link.Variant.ID == id {
				v := link.Variant
				v.Images = append([]model.Image(nil), v.Images...)
				return &v, nil
			}
		}
	}
	return nil, nil
}

func (s *CatalogStore) ListProducts(_ context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, p := range s.products {
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.IsFeatured != nil && p.IsFeatured != *f.IsFeatured {
			continue
		}
		if f.Year > 0 && !p.FitsYear(f.Year) {
			continue
		}
		if q := strings.ToLower(f.SearchQuery); q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
			continue
		}
		p.Components = nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsFeatured != out[j].IsFeatured {
			return out[i].IsFeatured
		}
		return out[i].Name < out[j].Name
	})

	total := len(out)
	if f.PageSize > 0 {
		start := (max(f.Page, 1) - 1) * f.PageSize
		if start >= len(out) {
			return []model.Product{}, total, nil
		}
		out = out[start:min(start+f.PageSize, len(out))]
	}
	return out, total, nil
}

func cloneProduct(p model.Product) model.Product {
	p.Images = append([]model.Image(nil), p.Images...)
	links := make([]model.ProductComponent, len(p.Components))
	for i, link := range p.Components {
		link.Variant.Images = append([]model.Image(nil), link.Variant.Images...)
		links[i] = link
	}
	p.Components = links
	return p
}
