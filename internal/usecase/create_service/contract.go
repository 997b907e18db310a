package create_service

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	LockProvider(ctx context.Context, providerID int64) error
	CountByProvider(ctx context.Context, providerID int64) (int, error)
	Create(ctx context.Context, service *domain.Service) (*domain.Service, error)
}

// SubscriptionRepository интерфейс репозитория подписок
type SubscriptionRepository interface {
	GetByProviderID(ctx context.Context, providerID int64) (*domain.Subscription, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики бизнес-операций
type Metrics interface {
	CapacityRejected()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
