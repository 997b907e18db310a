package domain

import "time"

// SubscriptionStatus статус подписки провайдера
type SubscriptionStatus string

const (
	SubscriptionPending     SubscriptionStatus = "PENDING"
	SubscriptionPaymentSent SubscriptionStatus = "PAYMENT_SENT"
	SubscriptionActive      SubscriptionStatus = "ACTIVE"
)

// Subscription подписка провайдера (одна на провайдера).
// Создается лениво при первом обращении со статусом PENDING и лимитом 1.
// PENDING -> PAYMENT_SENT (провайдер) -> ACTIVE (администратор), назад не откатывается
type Subscription struct {
	ID            int64
	ProviderID    int64
	Status        SubscriptionStatus
	ServiceLimit  int
	PaymentSentAt *time.Time
	ActivatedAt   *time.Time
	ActivatedBy   *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanMarkPaymentSent provider reports the subscription payment
func (s *Subscription) CanMarkPaymentSent() bool {
	return s.Status == SubscriptionPending
}

// CanActivate admin activates after the provider reported the payment
func (s *Subscription) CanActivate() bool {
	return s.Status == SubscriptionPaymentSent
}
