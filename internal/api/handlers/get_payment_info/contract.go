package get_payment_info

import (
	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions/models"
)

type SubscriptionService interface {
	PaymentInfo() (*models.PaymentInfoResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
