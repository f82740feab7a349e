package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/inventory"
	"github.com/fekuna/omnipos-pricing-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pricing.v1.InventoryService"

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) ServiceDesc() *grpc.ServiceDesc {
	return rpc.NewServiceDesc(ServiceName,
		rpc.Method{Name: "AdjustStock", Handler: h.AdjustStock},
		rpc.Method{Name: "SetStock", Handler: h.SetStock},
		rpc.Method{Name: "ListMovements", Handler: h.ListMovements},
	)
}

func (h *InventoryHandler) AdjustStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.AdjustStockInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.UserID == "" {
		in.UserID = auth.GetCustomerID(ctx)
	}
	movement, err := h.uc.AdjustStock(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(movement)
}

func (h *InventoryHandler) SetStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.SetStockInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.UserID == "" {
		in.UserID = auth.GetCustomerID(ctx)
	}
	movement, err := h.uc.SetStock(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	resp := map[string]any{"changed": movement != nil}
	if movement != nil {
		resp["movement"] = movement
	}
	return rpc.Encode(resp)
}

func (h *InventoryHandler) ListMovements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.MovementFilters
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.PageSize <= 0 {
		in.Page, in.PageSize = 1, 20
	}
	movements, total, err := h.uc.ListMovements(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	if movements == nil {
		movements = []model.StockMovement{}
	}
	return rpc.Encode(map[string]any{
		"movements": movements,
		"total":     total,
	})
}

func (h *InventoryHandler) mapError(err error) error {
	switch {
	case errors.Is(err, inventory.ErrVariantNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, inventory.ErrInvalidQuantity), errors.Is(err, inventory.ErrInvalidMovement):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, wallet.ErrBusy):
		return status.Error(codes.Aborted, err.Error())
	}
	h.logger.Error("inventory request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
