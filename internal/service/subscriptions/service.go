package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	subscriptionRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/subscription"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/userservice"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions/models"
)

// Service сервис подписок провайдеров и лимита услуг
type Service struct {
	subscriptionRepo SubscriptionRepository
	serviceRepo      ServiceRepository
	userClient       UserServiceClient
	collector        models.PaymentCollector
	logger           Logger
}

// NewService создает новый экземпляр сервиса подписок
func NewService(
	subscriptionRepo SubscriptionRepository,
	serviceRepo ServiceRepository,
	userClient UserServiceClient,
	collector models.PaymentCollector,
	logger Logger,
) *Service {
	return &Service{
		subscriptionRepo: subscriptionRepo,
		serviceRepo:      serviceRepo,
		userClient:       userClient,
		collector:        collector,
		logger:           logger,
	}
}

// GetSubscription возвращает подписку провайдера, создавая её при первом обращении
func (s *Service) GetSubscription(ctx context.Context, providerID int64) (*models.SubscriptionResponse, error) {
	s.logger.Info("GetSubscription: provider=%d", providerID)

	subscription, err := s.subscriptionRepo.GetOrCreate(ctx, providerID)
	if err != nil {
		s.logger.Error("GetSubscription: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetSubscription - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSubscription(subscription), nil
}

// MarkPaymentSent провайдер сообщает, что оплатил подписку: PENDING -> PAYMENT_SENT
func (s *Service) MarkPaymentSent(ctx context.Context, providerID int64) (*models.SubscriptionResponse, error) {
	s.logger.Info("MarkPaymentSent: provider=%d", providerID)

	subscription, err := s.subscriptionRepo.GetOrCreate(ctx, providerID)
	if err != nil {
		s.logger.Error("MarkPaymentSent: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: MarkPaymentSent - repository error: %v", ErrInternal, err)
	}

	if !subscription.CanMarkPaymentSent() {
		s.logger.Warn("MarkPaymentSent: provider=%d subscription is %s", providerID, subscription.Status)
		return nil, fmt.Errorf("%w: status=%s", ErrInvalidState, subscription.Status)
	}

	updated, err := s.subscriptionRepo.MarkPaymentSent(ctx, providerID)
	if err != nil {
		return nil, s.mapTransitionError(ctx, "MarkPaymentSent", providerID, err)
	}

	s.logger.Info("MarkPaymentSent: provider=%d subscription is PAYMENT_SENT", providerID)
	return models.FromDomainSubscription(updated), nil
}

// Activate администратор активирует подписку после получения оплаты: PAYMENT_SENT -> ACTIVE
func (s *Service) Activate(ctx context.Context, req *models.ActivateRequest) (*models.SubscriptionResponse, error) {
	s.logger.Info("Activate: provider=%d, limit=%d by admin=%d", req.ProviderID, req.ServiceLimit, req.AdminID)

	if req.ServiceLimit < domain.MinServiceLimit || req.ServiceLimit > domain.MaxServiceLimit {
		return nil, fmt.Errorf("%w: serviceLimit must be between %d and %d",
			ErrInvalidInput, domain.MinServiceLimit, domain.MaxServiceLimit)
	}

	// 1. Проверяем роль через UserService
	admin, err := s.userClient.GetUser(ctx, req.AdminID)
	if err != nil {
		if errors.Is(err, userservice.ErrUserNotFound) {
			s.logger.Warn("Activate: user=%d not found", req.AdminID)
			return nil, ErrAccessDenied
		}
		s.logger.Error("Activate: failed to get user=%d: %v", req.AdminID, err)
		return nil, fmt.Errorf("%w: failed to get user: %v", ErrInternal, err)
	}
	if !admin.IsAdmin() {
		s.logger.Warn("Activate: user=%d with role=%s is not admin", req.AdminID, admin.Role)
		return nil, ErrAccessDenied
	}

	// 2. Подписка должна существовать и ожидать активации
	subscription, err := s.subscriptionRepo.GetByProviderID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound) {
			s.logger.Warn("Activate: provider=%d has no subscription", req.ProviderID)
			return nil, ErrSubscriptionNotFound
		}
		s.logger.Error("Activate: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: Activate - repository error: %v", ErrInternal, err)
	}

	if !subscription.CanActivate() {
		s.logger.Warn("Activate: provider=%d subscription is %s", req.ProviderID, subscription.Status)
		return nil, fmt.Errorf("%w: status=%s", ErrInvalidState, subscription.Status)
	}

	// 3. Условный переход
	updated, err := s.subscriptionRepo.Activate(ctx, req.ProviderID, req.AdminID, req.ServiceLimit)
	if err != nil {
		return nil, s.mapTransitionError(ctx, "Activate", req.ProviderID, err)
	}

	s.logger.Info("Activate: provider=%d subscription is ACTIVE with limit=%d", req.ProviderID, updated.ServiceLimit)
	return models.FromDomainSubscription(updated), nil
}

// CanAddService проверяет, может ли провайдер добавить еще одну услугу
// Не создает подписку: её отсутствие означает бесплатный лимит
func (s *Service) CanAddService(ctx context.Context, providerID int64) (*models.CapacityResponse, error) {
	s.logger.Info("CanAddService: provider=%d", providerID)

	subscription, err := s.subscriptionRepo.GetByProviderID(ctx, providerID)
	if err != nil && !errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound) {
		s.logger.Error("CanAddService: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: CanAddService - repository error: %v", ErrInternal, err)
	}

	count, err := s.serviceRepo.CountByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("CanAddService: failed to count services for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: CanAddService - count error: %v", ErrInternal, err)
	}

	decision := domain.EvaluateCapacity(subscription, count)
	s.logger.Info("CanAddService: provider=%d allowed=%t (%d/%d)", providerID, decision.Allowed, decision.CurrentCount, decision.Limit)

	return models.FromCapacityDecision(decision), nil
}

// PaymentInfo возвращает реквизиты единственного получателя оплаты из конфигурации
func (s *Service) PaymentInfo() (*models.PaymentInfoResponse, error) {
	if s.collector.UserID <= 0 || s.collector.QRCodeURL == "" {
		s.logger.Warn("PaymentInfo: payment collector is not configured")
		return nil, ErrPaymentNotConfigured
	}

	return &models.PaymentInfoResponse{
		CollectorID: s.collector.UserID,
		QRCodeURL:   s.collector.QRCodeURL,
		Price:       s.collector.Price,
		Currency:    s.collector.Currency,
	}, nil
}

func (s *Service) mapTransitionError(ctx context.Context, method string, providerID int64, err error) error {
	switch {
	case errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound):
		s.logger.Warn("%s: provider=%d has no subscription", method, providerID)
		return ErrSubscriptionNotFound
	case errors.Is(err, subscriptionRepo.ErrStateChanged):
		current, getErr := s.subscriptionRepo.GetByProviderID(ctx, providerID)
		if getErr != nil {
			return fmt.Errorf("%w: %s - reload subscription: %v", ErrInternal, method, getErr)
		}
		s.logger.Warn("%s: provider=%d subscription changed concurrently to %s", method, providerID, current.Status)
		return fmt.Errorf("%w: status=%s", ErrInvalidState, current.Status)
	default:
		s.logger.Error("%s: repository error for provider=%d: %v", method, providerID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
}
