package mark_subscription_payment_sent

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions/models"
)

type SubscriptionService interface {
	MarkPaymentSent(ctx context.Context, providerID int64) (*models.SubscriptionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
