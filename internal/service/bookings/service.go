package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/events"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
)

const (
	transitionKindStatus  = "status"
	transitionKindPayment = "payment"
)

// Service сервис чтения бронирований и переходов их жизненного цикла
type Service struct {
	bookingRepo  BookingRepository
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование по ID
// Видеть бронирование могут только его клиент и провайдер
func (s *Service) GetByID(ctx context.Context, id int64, callerID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, callerID)

	booking, err := s.loadBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !booking.IsParty(callerID) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", callerID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings получает историю бронирований клиента (сначала новые)
// Опционально фильтрует по статусу
func (s *Service) GetCustomerBookings(ctx context.Context, req *models.GetCustomerBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCustomerBookings: fetching bookings for customer=%d, status=%v", req.CustomerID, req.Status)

	filter := domain.CustomerBookingsFilter{CustomerID: req.CustomerID}
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCustomerBookings: invalid status=%s for customer=%d", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	bookings, err := s.bookingRepo.GetByCustomer(ctx, filter)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for customer=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: fetched %d bookings for customer=%d", len(bookings), req.CustomerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderSchedule получает расписание провайдера, упорядоченное по времени начала
//
// Примеры использования:
// - Все бронирования: GetProviderSchedule(ctx, &GetProviderScheduleRequest{ProviderID: 7})
// - Бронирования за неделю: указать From и To
// - Только ожидающие подтверждения: Status = "PENDING"
func (s *Service) GetProviderSchedule(ctx context.Context, req *models.GetProviderScheduleRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProviderSchedule: fetching schedule for provider=%d, status=%v", req.ProviderID, req.Status)

	if req.From != nil && req.To != nil && !req.From.Before(*req.To) {
		s.logger.Warn("GetProviderSchedule: invalid range for provider=%d", req.ProviderID)
		return nil, ErrInvalidTimeRange
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderSchedule: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderSchedule: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderSchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderSchedule: fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// UpdateStatus меняет статус бронирования по таблице переходов
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: booking id=%d to status=%s by user=%d", bookingID, req.Status, req.CallerID)

	to, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s", req.Status)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	return s.transition(ctx, "UpdateStatus", bookingID, req.CallerID, func(b *domain.Booking) (domain.StateChange, error) {
		return b.PlanStatusChange(req.CallerID, to, s.timeProvider.Now())
	})
}

// Cancel отменяет бронирование
// Отменить может клиент или провайдер; подтвержденное бронирование - только до его окончания
func (s *Service) Cancel(ctx context.Context, bookingID int64, callerID int64) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, callerID)

	return s.transition(ctx, "Cancel", bookingID, callerID, func(b *domain.Booking) (domain.StateChange, error) {
		return b.PlanStatusChange(callerID, domain.StatusCancelled, s.timeProvider.Now())
	})
}

// MarkAsPaid клиент отмечает, что оплатил бронирование вне системы
func (s *Service) MarkAsPaid(ctx context.Context, bookingID int64, customerID int64) (*models.BookingResponse, error) {
	s.logger.Info("MarkAsPaid: booking id=%d by user=%d", bookingID, customerID)

	return s.transition(ctx, "MarkAsPaid", bookingID, customerID, func(b *domain.Booking) (domain.StateChange, error) {
		return b.PlanMarkPaid(customerID)
	})
}

// ConfirmPayment провайдер подтверждает получение оплаты
// Ожидающее бронирование при этом автоматически подтверждается
func (s *Service) ConfirmPayment(ctx context.Context, bookingID int64, providerID int64) (*models.BookingResponse, error) {
	s.logger.Info("ConfirmPayment: booking id=%d by user=%d", bookingID, providerID)

	return s.transition(ctx, "ConfirmPayment", bookingID, providerID, func(b *domain.Booking) (domain.StateChange, error) {
		return b.PlanConfirmPayment(providerID)
	})
}

// transition читает бронирование, проверяет переход доменными правилами
// и применяет его одним условным UPDATE. Ошибка не оставляет изменений в БД
func (s *Service) transition(
	ctx context.Context,
	method string,
	bookingID int64,
	callerID int64,
	plan func(b *domain.Booking) (domain.StateChange, error),
) (*models.BookingResponse, error) {
	booking, err := s.loadBooking(ctx, method, bookingID)
	if err != nil {
		return nil, err
	}

	change, err := plan(booking)
	if err != nil {
		if errors.Is(err, domain.ErrPermissionDenied) {
			s.logger.Warn("%s: access denied for user=%d to booking id=%d", method, callerID, bookingID)
			return nil, ErrAccessDenied
		}
		s.logger.Warn("%s: rejected for booking id=%d: %v", method, bookingID, err)
		return nil, err
	}

	updated, err := s.bookingRepo.ApplyStateChange(ctx, bookingID, change)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			s.logger.Warn("%s: booking id=%d disappeared", method, bookingID)
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrStateChanged):
			s.logger.Warn("%s: booking id=%d changed concurrently", method, bookingID)
			return nil, s.concurrentChangeError(ctx, method, bookingID)
		default:
			s.logger.Error("%s: repository error for booking id=%d: %v", method, bookingID, err)
			return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
		}
	}

	if change.FromStatus != change.ToStatus {
		s.metrics.BookingTransition(transitionKindStatus, string(change.ToStatus))
	}
	if change.FromPayment != change.ToPayment {
		s.metrics.BookingTransition(transitionKindPayment, string(change.ToPayment))
	}

	s.logger.Info("%s: booking id=%d %s/%s -> %s/%s", method, bookingID,
		change.FromStatus, change.FromPayment, change.ToStatus, change.ToPayment)

	if err := s.publisher.Publish(ctx, events.BookingChanged(updated, change, s.timeProvider.Now())); err != nil {
		s.logger.Warn("%s: failed to publish event for booking id=%d: %v", method, bookingID, err)
	}

	return models.FromDomainBooking(updated), nil
}

// concurrentChangeError строит отказ с актуальным состоянием после проигранной гонки
func (s *Service) concurrentChangeError(ctx context.Context, method string, bookingID int64) error {
	current, err := s.loadBooking(ctx, method, bookingID)
	if err != nil {
		return err
	}
	return &domain.TransitionError{
		Status:        current.Status,
		PaymentStatus: current.PaymentStatus,
		Reason:        "booking was modified concurrently",
	}
}

func (s *Service) loadBooking(ctx context.Context, method string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", method, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", method, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
	}
	return booking, nil
}
