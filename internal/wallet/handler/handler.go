package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pricing.v1.WalletService"

type WalletHandler struct {
	uc     wallet.UseCase
	logger logger.ZapLogger
}

func NewWalletHandler(uc wallet.UseCase, log logger.ZapLogger) *WalletHandler {
	return &WalletHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *WalletHandler) ServiceDesc() *grpc.ServiceDesc {
	return rpc.NewServiceDesc(ServiceName,
		rpc.Method{Name: "Append", Handler: h.Append},
		rpc.Method{Name: "Balance", Handler: h.Balance},
		rpc.Method{Name: "History", Handler: h.History},
	)
}

func (h *WalletHandler) Append(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.AppendInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	txn, err := h.uc.Append(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(txn)
}

func (h *WalletHandler) Balance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in struct {
		CustomerID string `json:"customer_id"`
	}
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.CustomerID == "" {
		in.CustomerID = auth.GetCustomerID(ctx)
	}
	balance, err := h.uc.Balance(ctx, in.CustomerID)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(map[string]any{
		"customer_id": in.CustomerID,
		"balance":     balance,
	})
}

func (h *WalletHandler) History(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.HistoryFilters
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.CustomerID == "" {
		in.CustomerID = auth.GetCustomerID(ctx)
	}
	txns, total, err := h.uc.History(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	if txns == nil {
		txns = []model.WalletTransaction{}
	}
	return rpc.Encode(map[string]any{
		"transactions": txns,
		"total":        total,
	})
}

func (h *WalletHandler) mapError(err error) error {
	switch {
	case errors.Is(err, wallet.ErrInvalidAmount), errors.Is(err, wallet.ErrInvalidType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, wallet.ErrInsufficientBalance):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, wallet.ErrBalanceChanged), errors.Is(err, wallet.ErrBusy):
		return status.Error(codes.Aborted, err.Error())
	}
	h.logger.Error("wallet request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
