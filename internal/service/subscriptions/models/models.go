package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Request модели

// ActivateRequest запрос администратора на активацию подписки
type ActivateRequest struct {
	AdminID      int64 `json:"-"`
	ProviderID   int64 `json:"-"`
	ServiceLimit int   `json:"serviceLimit" validate:"required,min=1,max=100"`
}

// Response модели

// SubscriptionResponse ответ с данными подписки
type SubscriptionResponse struct {
	ID             int64      `json:"id"`
	ProviderID     int64      `json:"providerId"`
	Status         string     `json:"status"`
	ServiceLimit   int        `json:"serviceLimit"`
	EffectiveLimit int        `json:"effectiveLimit"` // Лимит, который действует сейчас
	PaymentSentAt  *time.Time `json:"paymentSentAt,omitempty"`
	ActivatedAt    *time.Time `json:"activatedAt,omitempty"`
	ActivatedBy    *int64     `json:"activatedBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// CapacityResponse ответ на проверку возможности добавить услугу
type CapacityResponse struct {
	Allowed      bool `json:"allowed"`
	Limit        int  `json:"limit"`
	CurrentCount int  `json:"currentCount"`
}

// PaymentInfoResponse реквизиты для оплаты подписки
type PaymentInfoResponse struct {
	CollectorID int64           `json:"collectorId"`
	QRCodeURL   string          `json:"qrCodeUrl"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
}

// PaymentCollector единственный получатель оплаты подписок, задается конфигурацией
type PaymentCollector struct {
	UserID    int64
	QRCodeURL string
	Price     decimal.Decimal
	Currency  string
}

// Методы конвертации

// FromDomainSubscription конвертирует domain модель в DTO
func FromDomainSubscription(s *domain.Subscription) *SubscriptionResponse {
	if s == nil {
		return nil
	}

	return &SubscriptionResponse{
		ID:             s.ID,
		ProviderID:     s.ProviderID,
		Status:         string(s.Status),
		ServiceLimit:   s.ServiceLimit,
		EffectiveLimit: domain.ServiceLimit(s),
		PaymentSentAt:  s.PaymentSentAt,
		ActivatedAt:    s.ActivatedAt,
		ActivatedBy:    s.ActivatedBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// FromCapacityDecision конвертирует решение по лимиту в DTO
func FromCapacityDecision(d domain.CapacityDecision) *CapacityResponse {
	return &CapacityResponse{
		Allowed:      d.Allowed,
		Limit:        d.Limit,
		CurrentCount: d.CurrentCount,
	}
}
