package tier

import (
	"context"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
)

type Repository interface {
	ListActiveTiers(ctx context.Context) ([]model.Tier, error)
}
