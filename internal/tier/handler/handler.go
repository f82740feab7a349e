package handler

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	"github.com/fekuna/omnipos-pricing-service/internal/tier/dto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pricing.v1.TierService"

const defaultChangeLimit = 20

type TierHandler struct {
	uc     tier.UseCase
	logger logger.ZapLogger
}

func NewTierHandler(uc tier.UseCase, log logger.ZapLogger) *TierHandler {
	return &TierHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *TierHandler) ServiceDesc() *grpc.ServiceDesc {
	return rpc.NewServiceDesc(ServiceName,
		rpc.Method{Name: "ResolveTier", Handler: h.ResolveTier},
		rpc.Method{Name: "GetCustomerTier", Handler: h.GetCustomerTier},
		rpc.Method{Name: "Recompute", Handler: h.Recompute},
		rpc.Method{Name: "RecordCompletedOrder", Handler: h.RecordCompletedOrder},
		rpc.Method{Name: "AdjustSpend", Handler: h.AdjustSpend},
		rpc.Method{Name: "OverrideTier", Handler: h.OverrideTier},
		rpc.Method{Name: "ListTierChanges", Handler: h.ListTierChanges},
		rpc.Method{Name: "ResetMonthlySpend", Handler: h.ResetMonthlySpend},
	)
}

type customerRequest struct {
	CustomerID string                 `json:"customer_id"`
	Reason     model.TierChangeReason `json:"reason"`
	Limit      int                    `json:"limit"`
}

func (h *TierHandler) ResolveTier(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		MonthlySpend decimal.Decimal `json:"monthly_spend"`
	}
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	t, err := h.uc.ResolveTier(ctx, in.MonthlySpend)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(map[string]any{"tier": t})
}

func (h *TierHandler) GetCustomerTier(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in customerRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	out, err := h.uc.GetCustomerTier(ctx, in.CustomerID)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(out)
}

func (h *TierHandler) Recompute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in customerRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.Reason == "" {
		in.Reason = model.TierChangeAdminAdjustment
	}
	out, err := h.uc.Recompute(ctx, in.CustomerID, in.Reason)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(out)
}

func (h *TierHandler) RecordCompletedOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.CompletedOrderInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	out, err := h.uc.RecordCompletedOrder(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(out)
}

func (h *TierHandler) AdjustSpend(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.AdjustSpendInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	out, err := h.uc.AdjustSpend(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(out)
}

func (h *TierHandler) OverrideTier(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.OverrideTierInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	out, err := h.uc.OverrideTier(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(out)
}

func (h *TierHandler) ListTierChanges(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in customerRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.Limit <= 0 {
		in.Limit = defaultChangeLimit
	}
	changes, err := h.uc.ListChanges(ctx, in.CustomerID, in.Limit)
	if err != nil {
		return nil, h.mapError(err)
	}
	if changes == nil {
		changes = []model.TierChange{}
	}
	return rpc.Encode(map[string]any{"changes": changes})
}

// ResetMonthlySpend runs the reset job on demand. The scheduler calls the use case directly.
func (h *TierHandler) ResetMonthlySpend(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		At *time.Time `json:"at"`
	}
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	at := time.Now()
	if in.At != nil {
		at = *in.At
	}
	out, err := h.uc.ResetMonthlySpend(ctx, at)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(out)
}

func (h *TierHandler) mapError(err error) error {
	switch {
	case errors.Is(err, customer.ErrCustomerNotFound), errors.Is(err, tier.ErrTierNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, tier.ErrInvalidOrder):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, tier.ErrDuplicateLevel):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	h.logger.Error("tier request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
