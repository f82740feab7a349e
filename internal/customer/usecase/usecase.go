package usecase

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/customer"
	"github.com/fekuna/omnipos-pricing-service/internal/customer/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/events"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
	"go.uber.org/zap"
)

type customerUseCase struct {
	repo   customer.Repository
	bus    *events.Bus
	logger logger.ZapLogger
}

func NewCustomerUseCase(repo customer.Repository, bus *events.Bus, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{
		repo:   repo,
		bus:    bus,
		logger: log,
	}
}

func (uc *customerUseCase) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, customer.ErrCustomerNotFound
	}
	return c, nil
}

// ChangeCustomerType persists the new class and publishes CustomerTypeChanged. Subscribers
// (pricing context caches) have run by the time this returns.
func (uc *customerUseCase) ChangeCustomerType(ctx context.Context, input *dto.ChangeTypeInput) (*model.Customer, error) {
	if !input.NewType.Valid() {
		return nil, customer.ErrInvalidCustomerClass
	}

	c, err := uc.GetCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	if c.CustomerClass != input.NewType {
		if err := uc.repo.UpdateClass(ctx, c.ID, input.NewType); err != nil {
			return nil, err
		}
		uc.logger.Info("customer type changed",
			zap.String("customer_id", c.ID),
			zap.String("from", string(c.CustomerClass)),
			zap.String("to", string(input.NewType)),
			zap.String("changed_by", input.ChangedBy),
		)
		c.CustomerClass = input.NewType
	}

	// Published even when unchanged so a cache that missed an earlier event heals.
	uc.bus.PublishCustomerTypeChanged(ctx, events.CustomerTypeChanged{
		CustomerID: c.ID,
		NewType:    c.CustomerClass,
	})

	return c, nil
}
