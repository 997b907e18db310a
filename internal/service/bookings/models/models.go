package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// UpdateStatusRequest запрос на смену статуса бронирования
type UpdateStatusRequest struct {
	CallerID int64  `json:"-"`
	Status   string `json:"status"`
}

// GetCustomerBookingsRequest запрос на получение истории бронирований клиента
type GetCustomerBookingsRequest struct {
	CustomerID int64   `json:"-"`
	Status     *string `json:"status,omitempty"`
}

// GetProviderScheduleRequest запрос на получение расписания провайдера
type GetProviderScheduleRequest struct {
	ProviderID int64      `json:"-"`
	Status     *string    `json:"status,omitempty"` // Фильтр по статусу (опционально)
	From       *time.Time `json:"from,omitempty"`   // Начало периода (опционально)
	To         *time.Time `json:"to,omitempty"`     // Конец периода (опционально)
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderScheduleRequest) ToDomainFilter() (domain.ProviderBookingsFilter, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID: r.ProviderID,
		From:       r.From,
		To:         r.To,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            int64  `json:"id"`
	ServiceID     int64  `json:"serviceId"`
	CustomerID    int64  `json:"customerId"`
	ProviderID    int64  `json:"providerId"`
	StartTime     string `json:"startTime"` // RFC 3339
	EndTime       string `json:"endTime"`   // RFC 3339
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`

	// Денормализованные данные
	ServiceTitle string          `json:"serviceTitle"`
	ServicePrice decimal.Decimal `json:"servicePrice"`
	Notes        *string         `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:            b.ID,
		ServiceID:     b.ServiceID,
		CustomerID:    b.CustomerID,
		ProviderID:    b.ProviderID,
		StartTime:     b.StartTime.Format(time.RFC3339),
		EndTime:       b.EndTime.Format(time.RFC3339),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		ServiceTitle:  b.ServiceTitle,
		ServicePrice:  b.ServicePrice,
		Notes:         b.Notes,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
