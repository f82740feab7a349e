package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/configurator"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type catalogUseCase struct {
	repo     catalog.Repository
	pricing  catalog.ContextResolver
	cache    *cache.RedisClient
	cacheTTL time.Duration
	logger   logger.ZapLogger
}

// NewCatalogUseCase builds the catalog use case. cache may be nil, which disables the
// product cache.
func NewCatalogUseCase(repo catalog.Repository, pricing catalog.ContextResolver, cache *cache.RedisClient, cacheTTL time.Duration, log logger.ZapLogger) catalog.UseCase {
	return &catalogUseCase{
		repo:     repo,
		pricing:  pricing,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func productCacheKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}

func (uc *catalogUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	// 1. Check Cache
	if uc.cache != nil && uc.cacheTTL > 0 {
		val, err := uc.cache.Client.Get(ctx, productCacheKey(id)).Result()
		if err == nil {
			var p model.Product
			if err := json.Unmarshal([]byte(val), &p); err == nil {
				return &p, nil
			}
		}
	}

	// 2. DB
	p, err := uc.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, catalog.ErrProductNotFound
	}

	// 3. Set Cache
	if uc.cache != nil && uc.cacheTTL > 0 {
		if data, err := json.Marshal(p); err == nil {
			if err := uc.cache.Client.Set(ctx, productCacheKey(id), data, uc.cacheTTL).Err(); err != nil {
				uc.logger.Warn("failed to cache product", zap.String("product_id", id), zap.Error(err))
			}
		}
	}
	return p, nil
}

func (uc *catalogUseCase) InvalidateProduct(ctx context.Context, id string) error {
	if uc.cache == nil {
		return nil
	}
	return uc.cache.Client.Del(ctx, productCacheKey(id)).Err()
}

func (uc *catalogUseCase) GetVariant(ctx context.Context, id string) (*model.ComponentVariant, error) {
	v, err := uc.repo.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, catalog.ErrVariantNotFound
	}
	return v, nil
}

func (uc *catalogUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	return uc.repo.ListProducts(ctx, filters)
}

func (uc *catalogUseCase) GetConfigurator(ctx context.Context, productID, customerID string) (*dto.Configurator, error) {
	p, err := uc.quotableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	res := uc.pricing.Resolve(ctx, customerID)
	mode := res.Context.PricingMode

	sel := configurator.DefaultSelection(p)
	q, err := configurator.Calculate(p, sel, mode)
	if err != nil {
		// The default selection only uses active options of the product itself.
		return nil, fmt.Errorf("default configuration of %s: %w", p.ID, err)
	}

	return &dto.Configurator{
		Product:          p,
		Pricing:          res.Context,
		PricingDegraded:  res.Degraded,
		Groups:           configurator.Groups(p, mode),
		DefaultSelection: sel,
		Quote:            q,
	}, nil
}

func (uc *catalogUseCase) QuoteConfiguration(ctx context.Context, productID, customerID string, selection configurator.Selection) (*dto.QuoteResult, error) {
	res := uc.pricing.Resolve(ctx, customerID)
	out, err := uc.QuoteFor(ctx, productID, selection, res.Context)
	if err != nil {
		return nil, err
	}
	out.PricingDegraded = res.Degraded
	return out, nil
}

func (uc *catalogUseCase) QuoteFor(ctx context.Context, productID string, selection configurator.Selection, pc model.PricingContext) (*dto.QuoteResult, error) {
	p, err := uc.quotableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	q, err := configurator.Calculate(p, selection, pc.PricingMode)
	if err != nil {
		uc.logger.Warn("rejected configuration",
			zap.String("product_id", productID),
			zap.Any("selection", selection),
			zap.Error(err),
		)
		return nil, err
	}
	return &dto.QuoteResult{
		ProductID: p.ID,
		Pricing:   pc,
		Selection: selection,
		Quote:     q,
	}, nil
}

func (uc *catalogUseCase) quotableProduct(ctx context.Context, productID string) (*model.Product, error) {
	p, err := uc.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, catalog.ErrProductInactive
	}
	return p, nil
}
