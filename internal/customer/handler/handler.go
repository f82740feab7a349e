package handler

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/customer/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-pricing-service/internal/pricingcontext"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pricing.v1.CustomerService"

type PricingResolver interface {
	Resolve(ctx context.Context, customerID string) pricingcontext.Resolution
}

type CustomerHandler struct {
	uc      customer.UseCase
	pricing PricingResolver
	logger  logger.ZapLogger
}

func NewCustomerHandler(uc customer.UseCase, pricing PricingResolver, log logger.ZapLogger) *CustomerHandler {
	return &CustomerHandler{
		uc:      uc,
		pricing: pricing,
		logger:  log,
	}
}

func (h *CustomerHandler) ServiceDesc() *grpc.ServiceDesc {
	return rpc.NewServiceDesc(ServiceName,
		rpc.Method{Name: "GetCustomer", Handler: h.GetCustomer},
		rpc.Method{Name: "ChangeCustomerType", Handler: h.ChangeCustomerType},
		rpc.Method{Name: "ResolvePricingContext", Handler: h.ResolvePricingContext},
	)
}

type customerRequest struct {
	CustomerID string `json:"customer_id"`
}

func (h *CustomerHandler) GetCustomer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in customerRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	c, err := h.uc.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(c)
}

func (h *CustomerHandler) ChangeCustomerType(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.ChangeTypeInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.ChangedBy == "" {
		in.ChangedBy = auth.GetCustomerID(ctx)
	}
	c, err := h.uc.ChangeCustomerType(ctx, &in)
	if err != nil {
		return nil, h.mapError(err)
	}
	return rpc.Encode(c)
}

// ResolvePricingContext never fails: unknown customers and store outages get retail pricing.
func (h *CustomerHandler) ResolvePricingContext(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in customerRequest
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if in.CustomerID == "" {
		in.CustomerID = auth.GetCustomerID(ctx)
	}
	res := h.pricing.Resolve(ctx, in.CustomerID)
	out := map[string]any{
		"customer_id": in.CustomerID,
		"context":     res.Context,
		"degraded":    res.Degraded,
	}
	if res.Warning != nil {
		out["warning"] = res.Warning.Error()
	}
	return rpc.Encode(out)
}

func (h *CustomerHandler) mapError(err error) error {
	switch {
	case errors.Is(err, customer.ErrCustomerNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, customer.ErrInvalidCustomerClass):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	h.logger.Error("customer request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
