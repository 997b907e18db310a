package create_service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	subscriptionRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/subscription"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

// UseCase use case для создания услуги с проверкой лимита
type UseCase struct {
	serviceRepo      ServiceRepository
	subscriptionRepo SubscriptionRepository
	txManager        TransactionManager
	metrics          Metrics
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	serviceRepo ServiceRepository,
	subscriptionRepo SubscriptionRepository,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		serviceRepo:      serviceRepo,
		subscriptionRepo: subscriptionRepo,
		txManager:        txManager,
		metrics:          metrics,
		logger:           logger,
	}
}

// Execute выполняет use case создания услуги
// Лимит пересчитывается в той же транзакции, что и вставка
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateService: provider=%d, category=%s, duration=%d",
		req.ProviderID, req.Category, req.DurationMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateService: validation failed: %v", err)
		return nil, err
	}

	var result *Response

	// 2. Проверка лимита и вставка одной единицей работы
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.serviceRepo.LockProvider(txCtx, req.ProviderID); err != nil {
			uc.logger.Error("CreateService: failed to lock provider=%d: %v", req.ProviderID, err)
			return fmt.Errorf("%w: failed to lock provider: %w", ErrInternal, err)
		}

		subscription, err := uc.subscriptionRepo.GetByProviderID(txCtx, req.ProviderID)
		if err != nil && !errors.Is(err, subscriptionRepo.ErrSubscriptionNotFound) {
			uc.logger.Error("CreateService: failed to get subscription for provider=%d: %v", req.ProviderID, err)
			return fmt.Errorf("%w: failed to get subscription: %v", ErrInternal, err)
		}

		count, err := uc.serviceRepo.CountByProvider(txCtx, req.ProviderID)
		if err != nil {
			uc.logger.Error("CreateService: failed to count services for provider=%d: %v", req.ProviderID, err)
			return fmt.Errorf("%w: failed to count services: %w", ErrInternal, err)
		}

		decision := domain.EvaluateCapacity(subscription, count)
		if !decision.Allowed {
			uc.logger.Warn("CreateService: provider=%d reached service limit %d/%d",
				req.ProviderID, decision.CurrentCount, decision.Limit)
			return &CapacityError{Limit: decision.Limit, CurrentCount: decision.CurrentCount}
		}

		created, err := uc.serviceRepo.Create(txCtx, &domain.Service{
			ProviderID:      req.ProviderID,
			Title:           strings.TrimSpace(req.Title),
			Description:     req.Description,
			Category:        req.Category,
			BasePrice:       req.BasePrice,
			DurationMinutes: req.DurationMinutes,
		})
		if err != nil {
			uc.logger.Error("CreateService: failed to create service: %v", err)
			return fmt.Errorf("%w: failed to create service: %w", ErrInternal, err)
		}

		result = &Response{
			Service:  created,
			Capacity: domain.EvaluateCapacity(subscription, count+1),
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			uc.metrics.CapacityRejected()
			return nil, err
		}
		if txmanager.IsSerializationFailure(err) {
			uc.logger.Warn("CreateService: provider=%d concurrent catalog update: %v", req.ProviderID, err)
			return nil, ErrConcurrentUpdate
		}
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateService: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateService: created service id=%d for provider=%d", result.Service.ID, req.ProviderID)

	return result, nil
}
