package wallet

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet/dto"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Balance(ctx context.Context, customerID string) (decimal.Decimal, error)
	FindByReference(ctx context.Context, customerID, reference string) (*model.WalletTransaction, error)
	List(ctx context.Context, filters *dto.HistoryFilters) ([]model.WalletTransaction, int, error)

	// AppendWithBalance writes txn and moves the balance from balanceBefore to
	// txn.BalanceAfter in one transaction. It fails with ErrBalanceChanged when the stored
	// balance is no longer balanceBefore.
	AppendWithBalance(ctx context.Context, txn *model.WalletTransaction, balanceBefore decimal.Decimal) error
}
