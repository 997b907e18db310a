package subscriptions

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/userservice"
)

// SubscriptionRepository интерфейс репозитория подписок
type SubscriptionRepository interface {
	GetByProviderID(ctx context.Context, providerID int64) (*domain.Subscription, error)
	GetOrCreate(ctx context.Context, providerID int64) (*domain.Subscription, error)
	MarkPaymentSent(ctx context.Context, providerID int64) (*domain.Subscription, error)
	Activate(ctx context.Context, providerID, adminID int64, serviceLimit int) (*domain.Subscription, error)
}

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	CountByProvider(ctx context.Context, providerID int64) (int, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
