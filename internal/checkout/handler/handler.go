package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/fekuna/omnipos-pricing-service/internal/auth"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog"
	"github.com/fekuna/omnipos-pricing-service/internal/catalog/configurator"
	"github.com/fekuna/omnipos-pricing-service/internal/checkout"
	"github.com/fekuna/omnipos-pricing-service/internal/checkout/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"github.com/fekuna/omnipos-pricing-service/internal/tier"
	"github.com/fekuna/omnipos-pricing-service/internal/voucher"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pricing.v1.CheckoutService"

type CheckoutHandler struct {
	uc     checkout.UseCase
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewCheckoutHandler(uc checkout.UseCase, tr *i18n.Translator, log logger.ZapLogger) *CheckoutHandler {
	return &CheckoutHandler{
		uc:     uc,
		tr:     tr,
		logger: log,
	}
}

func (h *CheckoutHandler) ServiceDesc() *grpc.ServiceDesc {
	return rpc.NewServiceDesc(ServiceName,
		rpc.Method{Name: "Quote", Handler: h.Quote},
		rpc.Method{Name: "Complete", Handler: h.Complete},
	)
}

type quoteResponse struct {
	*dto.Quote
	Messages       []string `json:"messages"`
	VoucherMessage string   `json:"voucher_message,omitempty"`
}

type completionResponse struct {
	*dto.Completion
	Quote quoteResponse `json:"quote"`
}

func (h *CheckoutHandler) Quote(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.QuoteInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if id := auth.GetCustomerID(ctx); id != "" {
		in.CustomerID = id
	}
	q, err := h.uc.Quote(ctx, &in)
	if err != nil {
		return nil, h.mapError(ctx, err)
	}
	return rpc.Encode(h.present(ctx, q))
}

func (h *CheckoutHandler) Complete(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.CompleteInput
	if err := rpc.Decode(req, &in); err != nil {
		return nil, err
	}
	if id := auth.GetCustomerID(ctx); id != "" {
		in.CustomerID = id
	}
	out, err := h.uc.Complete(ctx, &in)
	if err != nil {
		return nil, h.mapError(ctx, err)
	}
	return rpc.Encode(completionResponse{Completion: out, Quote: h.present(ctx, out.Quote)})
}

func (h *CheckoutHandler) present(ctx context.Context, q *dto.Quote) quoteResponse {
	lang := auth.GetLanguage(ctx)
	out := quoteResponse{Quote: q, Messages: []string{}}
	for _, issue := range q.Issues {
		out.Messages = append(out.Messages, h.tr.Localize(lang, issue.MessageID, map[string]any{
			"Groups": strings.Join(issue.Groups, ", "),
		}))
	}
	if q.Voucher != nil {
		data := map[string]any{}
		if q.Voucher.MinPurchase != nil {
			data["MinPurchase"] = q.Voucher.MinPurchase.StringFixed(2)
		}
		out.VoucherMessage = h.tr.Localize(lang, q.Voucher.Reason.MessageID(), data)
	}
	return out
}

func (h *CheckoutHandler) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrCustomerRequired),
		errors.Is(err, checkout.ErrOrderRequired),
		errors.Is(err, voucher.ErrInvalidSubtotal),
		errors.Is(err, configurator.ErrUnknownVariant),
		errors.Is(err, configurator.ErrUnknownComponentType):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, catalog.ErrProductNotFound), errors.Is(err, customer.ErrCustomerNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, checkout.ErrNotPurchasable),
		errors.Is(err, catalog.ErrProductInactive),
		errors.Is(err, checkout.ErrVoucherNotAccepted),
		errors.Is(err, tier.ErrDuplicateLevel):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, voucher.ErrUsageConflict):
		return status.Error(codes.Aborted, h.tr.Localize(auth.GetLanguage(ctx), "voucher.usage_conflict", nil))
	case errors.Is(err, voucher.ErrIdempotencyKeyReuse):
		return status.Error(codes.AlreadyExists, err.Error())
	}
	h.logger.Error("checkout request failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}
