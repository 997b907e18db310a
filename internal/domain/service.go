package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCategory категория услуги (закрытый список)
type ServiceCategory string

const (
	CategoryCleaning   ServiceCategory = "CLEANING"
	CategoryPlumbing   ServiceCategory = "PLUMBING"
	CategoryElectrical ServiceCategory = "ELECTRICAL"
	CategoryBeauty     ServiceCategory = "BEAUTY"
	CategoryTutoring   ServiceCategory = "TUTORING"
	CategoryFitness    ServiceCategory = "FITNESS"
	CategoryRepair     ServiceCategory = "REPAIR"
	CategoryOther      ServiceCategory = "OTHER"
)

// ServiceCategories все допустимые категории
var ServiceCategories = []ServiceCategory{
	CategoryCleaning,
	CategoryPlumbing,
	CategoryElectrical,
	CategoryBeauty,
	CategoryTutoring,
	CategoryFitness,
	CategoryRepair,
	CategoryOther,
}

func (c ServiceCategory) IsValid() bool {
	for _, valid := range ServiceCategories {
		if c == valid {
			return true
		}
	}
	return false
}

// Service услуга провайдера фиксированной длительности
type Service struct {
	ID              int64
	ProviderID      int64
	Title           string
	Description     string
	Category        ServiceCategory
	BasePrice       decimal.Decimal
	DurationMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Duration returns the service duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
