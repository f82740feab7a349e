package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/configurator"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pricing.v1.CatalogService"

type CatalogHandler struct {
	uc     catalog.UseCase
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewCatalogHandler(uc catalog.UseCase, tr *i18n.Translator, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		uc:     uc,
		tr:     tr,
		logger: log,
	}
}

func (h *CatalogHandler) ServiceDesc() *grpc.ServiceDesc {
	return rpc.NewServiceDesc(ServiceName,
		rpc.Method{Name: "GetProduct", Handler: h.GetProduct},
		rpc.Method{Name: "ListProducts", Handler: h.ListProducts},
		rpc.Method{Name: "GetVariant", Handler: h.GetVariant},
		rpc.Method{Name: "GetConfigurator", Handler: h.GetConfigurator},
		rpc.Method{Name: "QuoteConfiguration", Handler: h.QuoteConfiguration},
		rpc.Method{Name: "InvalidateProduct", Handler: h.InvalidateProduct},
	)
}

type idRequest struct {
	ID string `json:"id"`
}

type listProductsRequest struct {
	IsActive   *bool  `json:"is_active"`
	IsFeatured *bool  `json:"is_featured"`
	Year       int    `json:"year"`
	Query      string `json:"query"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

type configuratorRequest struct {
	ProductID  string                 `json:"product_id"`
	CustomerID string                 `json:"customer_id"`
	Selection  configurator.Selection `json:"selection"`
}

type quoteResponse struct {
	*dto.QuoteResult
	Message string `json:"message,omitempty"`
}

func (h *CatalogHandler) GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	p, err := h.uc.GetProduct(ctx, in.ID)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(p)
}

func (h *CatalogHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in listProductsRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	products, total, err := h.uc.ListProducts(ctx, &dto.ProductFilters{
		IsActive:    in.IsActive,
		IsFeatured:  in.IsFeatured,
		Year:        in.Year,
		SearchQuery: in.Query,
		Page:        in.Page,
		PageSize:    in.PageSize,
	})
	if err != nil {
		return nil, h.mapError(err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return rpc.Encode(map[string]any{
		"products":  products,
		"total":     total,
		"page":      in.Page,
		"page_size": in.PageSize,
	})
}

func (h *CatalogHandler) GetVariant(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	v, err := h.uc.GetVariant(ctx, in.ID)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(v)
}

func (h *CatalogHandler) GetConfigurator(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in configuratorRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	out, err := h.uc.GetConfigurator(ctx, in.ProductID, customerID(ctx, in.CustomerID))
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(out)
}

func (h *CatalogHandler) QuoteConfiguration(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in configuratorRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.Selection == nil {
		in.Selection = configurator.Selection{}
	}
	res, err := h.uc.QuoteConfiguration(ctx, in.ProductID, customerID(ctx, in.CustomerID), in.Selection)
	if err != nil {
		return nil, h.mapError(err)
	}

	out := quoteResponse{QuoteResult: res}
	lang := auth.GetLanguage(ctx)
	switch {
	case !res.Quote.Complete:
		out.Message = h.tr.Localize(lang, "configuration.incomplete", map[string]any{
			"Groups": strings.Join(res.Quote.MissingGroups, ", "),
		})
	case res.Quote.AvailableStock == 0:
		out.Message = h.tr.Localize(lang, "configuration.out_of_stock", nil)
	}
	return rpc.Encode(out)
}

func (h *CatalogHandler) InvalidateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in idRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if err := h.uc.InvalidateProduct(ctx, in.ID); err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(map[string]any{"id": in.ID})
}

// customerID prefers the caller identity from metadata over the request body.
func customerID(ctx context.Context, fromRequest string) string {
	if id := auth.GetCustomerID(ctx); id != "" {
		return id
	}
	return fromRequest
}

func (h *CatalogHandler) mapError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, catalog.ErrVariantNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, catalog.ErrProductInactive):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, configurator.ErrUnknownVariant), errors.Is(err, configurator.ErrUnknownComponentType):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	h.logger.Error("catalog request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
