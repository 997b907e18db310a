package create_service

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	catalogModels "github.com/m04kA/SMC-MarketplaceService/internal/service/catalog/models"
	createService "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_service"
)

// CreateServiceRequest HTTP request model
type CreateServiceRequest struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=5000"`
	Category        string          `json:"category" validate:"required"`
	BasePrice       decimal.Decimal `json:"basePrice"`
	DurationMinutes int             `json:"durationMinutes" validate:"required,min=1,max=480"`
}

// CreateServiceResponse HTTP response model
type CreateServiceResponse struct {
	Service  *catalogModels.ServiceResponse `json:"service"`
	Capacity CapacityState                  `json:"capacity"`
}

// CapacityState состояние лимита услуг после создания
type CapacityState struct {
	CanAddMore   bool `json:"canAddMore"`
	Limit        int  `json:"limit"`
	CurrentCount int  `json:"currentCount"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateServiceRequest) ToUseCaseRequest(providerID int64) *createService.Request {
	return &createService.Request{
		ProviderID:      providerID,
		Title:           r.Title,
		Description:     r.Description,
		Category:        domain.ServiceCategory(r.Category),
		BasePrice:       r.BasePrice,
		DurationMinutes: r.DurationMinutes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createService.Response) *CreateServiceResponse {
	return &CreateServiceResponse{
		Service: catalogModels.FromDomainService(resp.Service),
		Capacity: CapacityState{
			CanAddMore:   resp.Capacity.Allowed,
			Limit:        resp.Capacity.Limit,
			CurrentCount: resp.Capacity.CurrentCount,
		},
	}
}
