package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pricing.v1.VoucherService"

type VoucherHandler struct {
	uc     voucher.UseCase
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewVoucherHandler(uc voucher.UseCase, tr *i18n.Translator, log logger.ZapLogger) *VoucherHandler {
	return &VoucherHandler{
		uc:     uc,
		tr:     tr,
		logger: log,
	}
}

func (h *VoucherHandler) ServiceDesc() *grpc.ServiceDesc {
	return rpc.NewServiceDesc(ServiceName,
		rpc.Method{Name: "EvaluateVoucher", Handler: h.EvaluateVoucher},
		rpc.Method{Name: "RedeemVoucher", Handler: h.RedeemVoucher},
	)
}

type evaluationResponse struct {
	*dto.Evaluation
	Message string `json:"message"`
}

type redeemResponse struct {
	Applied    bool               `json:"applied"`
	Replayed   bool               `json:"replayed"`
	Evaluation evaluationResponse `json:"evaluation"`
	Redemption any                `json:"redemption,omitempty"`
}

func (h *VoucherHandler) EvaluateVoucher(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.EvaluateInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if id := auth.GetCustomerID(ctx); id != "" {
		in.CustomerID = id
	}
	eval, err := h.uc.Evaluate(ctx, &in)
	if err != nil {
		return nil, h.mapError(ctx, err)
	}
	return rpc.Encode(h.present(ctx, eval))
}

func (h *VoucherHandler) RedeemVoucher(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.RedeemInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if id := auth.GetCustomerID(ctx); id != "" {
		in.CustomerID = id
	}
	res, err := h.uc.Redeem(ctx, &in)
	if err != nil {
		return nil, h.mapError(ctx, err)
	}

	out := redeemResponse{
		Applied:    res.Applied,
		Replayed:   res.Replayed,
		Evaluation: h.present(ctx, res.Evaluation),
	}
	if res.Redemption != nil {
		out.Redemption = res.Redemption
	}
	return rpc.Encode(out)
}

func (h *VoucherHandler) present(ctx context.Context, eval *dto.Evaluation) evaluationResponse {
	data := map[string]any{}
	if eval.MinPurchase != nil {
		data["MinPurchase"] = eval.MinPurchase.StringFixed(2)
	}
	return evaluationResponse{
		Evaluation: eval,
		Message:    h.tr.Localize(auth.GetLanguage(ctx), eval.Reason.MessageID(), data),
	}
}

func (h *VoucherHandler) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, voucher.ErrUsageConflict):
		return status.Error(codes.Aborted, h.tr.Localize(auth.GetLanguage(ctx), "voucher.usage_conflict", nil))
	case errors.Is(err, voucher.ErrIdempotencyKeyReuse):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, voucher.ErrInvalidSubtotal),
		errors.Is(err, voucher.ErrCustomerRequired),
		errors.Is(err, voucher.ErrIdempotencyKey):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	h.logger.Error("voucher request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
