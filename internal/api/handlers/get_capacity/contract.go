package get_capacity

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions/models"
)

type SubscriptionService interface {
	CanAddService(ctx context.Context, providerID int64) (*models.CapacityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
