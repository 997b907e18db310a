package catalog

import (
	"context"
	"errors"
	"fmt"

	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/catalog/models"
)

// Service сервис чтения каталога услуг
type Service struct {
	serviceRepo ServiceRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(serviceRepo ServiceRepository, logger Logger) *Service {
	return &Service{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// GetByID получает услугу по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ServiceResponse, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("GetByID: service id=%d not found", id)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("GetByID: repository error for service id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainService(service), nil
}

// ListByProvider получает услуги провайдера
func (s *Service) ListByProvider(ctx context.Context, providerID int64) (*models.ServiceListResponse, error) {
	services, err := s.serviceRepo.ListByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("ListByProvider: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListByProvider - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByProvider: fetched %d services for provider=%d", len(services), providerID)
	return models.FromDomainServiceList(services), nil
}
