package wallet

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet/dto"
	"github.com/shopspring/decimal"
)

type UseCase interface {
	Append(ctx context.Context, input *dto.AppendInput) (*model.WalletTransaction, error)
	Balance(ctx context.Context, customerID string) (decimal.Decimal, error)
	History(ctx context.Context, filters *dto.HistoryFilters) ([]model.WalletTransaction, int, error)
}
