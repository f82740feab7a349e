package customer

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/customer/dto"
	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type UseCase interface {
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ChangeCustomerType(ctx context.Context, input *dto.ChangeTypeInput) (*model.Customer, error)
}
