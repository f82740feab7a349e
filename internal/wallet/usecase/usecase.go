package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet"
	"github.com/fekuna/omnipos-pricing-service/internal/wallet/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type walletUseCase struct {
	repo   wallet.Repository
	locker wallet.Locker
	logger logger.ZapLogger
	now    func() time.Time
}

func NewWalletUseCase(repo wallet.Repository, locker wallet.Locker, log logger.ZapLogger) wallet.UseCase {
	return &walletUseCase{
		repo:   repo,
		locker: locker,
		logger: log,
		now:    time.Now,
	}
}

var knownTypes = map[model.TransactionType]bool{
	model.TransactionEarnPurchase:    true,
	model.TransactionEarnBonus:       true,
	model.TransactionEarnAdjustment:  true,
	model.TransactionSpendRedemption: true,
	model.TransactionSpendAdjustment: true,
	model.TransactionSpendExpiry:     true,
}

// Append adds one ledger entry. Entries for a customer are strictly ordered: the customer lock
// is held from reading the balance until the entry is committed.
func (uc *walletUseCase) Append(ctx context.Context, input *dto.AppendInput) (*model.WalletTransaction, error) {
	if !knownTypes[input.Type] {
		return nil, wallet.ErrInvalidType
	}
	amount := model.Money(input.Amount)
	if !amount.IsPositive() {
		return nil, wallet.ErrInvalidAmount
	}

	// 0. Acquire Lock
	unlock, err := uc.locker.Lock(ctx, fmt.Sprintf("lock:wallet:%s", input.CustomerID))
	if err != nil {
		uc.logger.Warn("failed to acquire wallet lock", zap.String("customer_id", input.CustomerID), zap.Error(err))
		return nil, err
	}
	defer unlock()

	// 1. Replay check
	if input.Reference != "" {
		existing, err := uc.repo.FindByReference(ctx, input.CustomerID, input.Reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	// 2. Current balance
	before, err := uc.repo.Balance(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	after := before.Add(input.Type.Signed(amount))
	if after.IsNegative() {
		return nil, wallet.ErrInsufficientBalance
	}

	var ref *string
	if input.Reference != "" {
		ref = &input.Reference
	}

	txn := &model.WalletTransaction{
		ID:           uuid.New().String(),
		CustomerID:   input.CustomerID,
		Type:         input.Type,
		Amount:       amount,
		BalanceAfter: after,
		Description:  input.Description,
		Reference:    ref,
		CreatedAt:    uc.now(),
	}

	// 3. Write entry and balance together
	if err := uc.repo.AppendWithBalance(ctx, txn, before); err != nil {
		if errors.Is(err, wallet.ErrBalanceChanged) {
			uc.logger.Error("wallet balance moved while locked", zap.String("customer_id", input.CustomerID))
		}
		return nil, err
	}

	return txn, nil
}

func (uc *walletUseCase) Balance(ctx context.Context, customerID string) (decimal.Decimal, error) {
	return uc.repo.Balance(ctx, customerID)
}

func (uc *walletUseCase) History(ctx context.Context, filters *dto.HistoryFilters) ([]model.WalletTransaction, int, error) {
	return uc.repo.List(ctx, filters)
}
