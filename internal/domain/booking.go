package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusCompleted BookingStatus = "COMPLETED"
)

// PaymentStatus represents the out-of-band payment state of a booking
type PaymentStatus string

const (
	PaymentUnpaid             PaymentStatus = "UNPAID"
	PaymentCustomerMarkedPaid PaymentStatus = "CUSTOMER_MARKED_PAID"
	PaymentProviderConfirmed  PaymentStatus = "PROVIDER_CONFIRMED"
)

// IsValid returns true if the status belongs to the closed set
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that allow no further transitions
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// IsValid returns true if the payment status belongs to the closed set
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentCustomerMarkedPaid, PaymentProviderConfirmed:
		return true
	}
	return false
}

// Booking represents a customer's reservation of a provider's time
type Booking struct {
	ID            int64
	ServiceID     int64
	CustomerID    int64
	ProviderID    int64 // копируется из услуги при создании
	StartTime     time.Time
	EndTime       time.Time // StartTime + длительность услуги на момент создания
	Status        BookingStatus
	PaymentStatus PaymentStatus
	Notes         *string

	// Denormalized data for history
	ServiceTitle string
	ServicePrice decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking blocks the provider's timeline
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsParty returns true if the user is the booking's customer or provider
func (b *Booking) IsParty(userID int64) bool {
	return userID == b.CustomerID || userID == b.ProviderID
}

// Duration returns the booked duration
func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// ProviderBookingsFilter фильтр для расписания провайдера
// From/To ограничивают период: попадают бронирования, пересекающиеся с [From, To)
type ProviderBookingsFilter struct {
	ProviderID int64          // Обязательный параметр
	Status     *BookingStatus // Фильтр по статусу (опционально)
	From       *time.Time     // Начало периода (опционально)
	To         *time.Time     // Конец периода (опционально)
	ActiveOnly bool           // Только PENDING и CONFIRMED
}

// CustomerBookingsFilter фильтр для истории бронирований клиента
type CustomerBookingsFilter struct {
	CustomerID int64
	Status     *BookingStatus
}
