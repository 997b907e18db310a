package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/events"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	serviceRepo  ServiceRepository
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка пересечений и вставка выполняются в одной сериализуемой транзакции
// под advisory-блокировкой расписания провайдера
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, service=%d, start=%s",
		req.CustomerID, req.ServiceID, req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if service.ProviderID == req.CustomerID {
		uc.logger.Warn("CreateBooking: provider=%d tried to book own service=%d", service.ProviderID, service.ID)
		return nil, ErrSelfBooking
	}

	// 3. Вычисляем интервал [start, end)
	start := req.StartTime
	end := start.Add(service.Duration())

	if err := validateTimeWindow(start, end, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CreateBooking: service=%d rejected window: %v", service.ID, err)
		return nil, err
	}

	var result *domain.Booking

	// 4. Проверка конфликта и вставка одной единицей работы
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Сериализуем создание бронирований у провайдера
		if err := uc.bookingRepo.LockProviderTimeline(txCtx, service.ProviderID); err != nil {
			uc.logger.Error("CreateBooking: failed to lock provider=%d timeline: %v", service.ProviderID, err)
			return fmt.Errorf("%w: failed to lock provider timeline: %v", ErrInternal, err)
		}

		// 4.2. Активные бронирования провайдера, пересекающиеся с запрошенным интервалом
		filter := domain.ProviderBookingsFilter{
			ProviderID: service.ProviderID,
			From:       &start,
			To:         &end,
			ActiveOnly: true,
		}

		bookings, err := uc.bookingRepo.GetByProviderWithFilter(txCtx, filter)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
			return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 4.3. Авторитетная проверка пересечения
		if conflicting, ok := domain.OverlapsAny(start, end, bookings); ok {
			uc.logger.Warn("CreateBooking: provider=%d slot %s-%s conflicts with booking id=%d",
				service.ProviderID, start.Format(domain.TimeFormat), end.Format(domain.TimeFormat), conflicting.ID)
			return ErrSlotNotAvailable
		}

		// 4.4. Создаем бронирование с денормализацией данных услуги
		booking := &domain.Booking{
			ServiceID:     service.ID,
			CustomerID:    req.CustomerID,
			ProviderID:    service.ProviderID,
			StartTime:     start,
			EndTime:       end,
			Status:        domain.StatusPending,
			PaymentStatus: domain.PaymentUnpaid,
			Notes:         req.Notes,
			ServiceTitle:  service.Title,
			ServicePrice:  service.BasePrice,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotNotAvailable) {
				uc.logger.Warn("CreateBooking: storage rejected overlapping booking for provider=%d: %v", service.ProviderID, err)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSlotNotAvailable) || txmanager.IsSerializationFailure(err) {
			uc.metrics.BookingConflict()
			return nil, ErrSlotNotAvailable
		}
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	uc.metrics.BookingCreated()
	uc.logger.Info("CreateBooking: successfully created booking id=%d for provider=%d", result.ID, result.ProviderID)

	// 5. Событие публикуется после коммита, ошибка публикации не отменяет бронирование
	if err := uc.publisher.Publish(ctx, events.BookingCreated(result, uc.timeProvider.Now())); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	return &Response{Booking: result}, nil
}
