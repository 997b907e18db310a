package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Типы событий бронирований
const (
	TypeBookingCreated        = "booking.created"
	TypeBookingStatusChanged  = "booking.status_changed"
	TypeBookingPaymentChanged = "booking.payment_changed"
)

// Event событие жизненного цикла бронирования
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Booking    Booking   `json:"booking"`

	PreviousStatus        *string `json:"previous_status,omitempty"`
	PreviousPaymentStatus *string `json:"previous_payment_status,omitempty"`
}

// Booking снимок бронирования в событии
type Booking struct {
	ID            int64           `json:"id"`
	ServiceID     int64           `json:"service_id"`
	CustomerID    int64           `json:"customer_id"`
	ProviderID    int64           `json:"provider_id"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	ServicePrice  decimal.Decimal `json:"service_price"`
}

// Key ключ партиционирования: события одного провайдера идут в одну партицию
func (e Event) Key() string {
	return strconv.FormatInt(e.Booking.ProviderID, 10)
}

// BookingCreated событие создания бронирования
func BookingCreated(b *domain.Booking, now time.Time) Event {
	return newEvent(TypeBookingCreated, b, now)
}

// BookingChanged событие перехода состояния.
// Тип зависит от того, что поменялось: статус или оплата
func BookingChanged(b *domain.Booking, change domain.StateChange, now time.Time) Event {
	eventType := TypeBookingStatusChanged
	if change.FromPayment != change.ToPayment {
		eventType = TypeBookingPaymentChanged
	}

	event := newEvent(eventType, b, now)
	prevStatus := string(change.FromStatus)
	prevPayment := string(change.FromPayment)
	event.PreviousStatus = &prevStatus
	event.PreviousPaymentStatus = &prevPayment
	return event
}

func newEvent(eventType string, b *domain.Booking, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		Booking: Booking{
			ID:            b.ID,
			ServiceID:     b.ServiceID,
			CustomerID:    b.CustomerID,
			ProviderID:    b.ProviderID,
			StartTime:     b.StartTime,
			EndTime:       b.EndTime,
			Status:        string(b.Status),
			PaymentStatus: string(b.PaymentStatus),
			ServicePrice:  b.ServicePrice,
		},
	}
}
