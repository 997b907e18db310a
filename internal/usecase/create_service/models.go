package create_service

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Request модель запроса на создание услуги
type Request struct {
	ProviderID      int64
	Title           string
	Description     string
	Category        domain.ServiceCategory
	BasePrice       decimal.Decimal
	DurationMinutes int
}

// Response модель ответа с созданной услугой
type Response struct {
	Service  *domain.Service
	Capacity domain.CapacityDecision // Состояние лимита после создания
}
