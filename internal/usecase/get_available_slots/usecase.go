package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
)

// UseCase use case для получения слотов услуги на дату.
// Результат носит рекомендательный характер: окончательная проверка делается при создании бронирования
type UseCase struct {
	bookingRepo BookingRepository
	serviceRepo ServiceRepository
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: service=%d, date=%s", req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Один запрос за активными бронированиями провайдера на весь день
	dayStart, dayEnd := domain.DayRange(req.Date)
	filter := domain.ProviderBookingsFilter{
		ProviderID: service.ProviderID,
		From:       &dayStart,
		To:         &dayEnd,
		ActiveOnly: true,
	}

	bookings, err := uc.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings for provider=%d: %v", service.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 4. Генерируем слоты по фиксированному набору бронирований
	slots := generateSlots(req.Date, service.Duration(), bookings)

	uc.logger.Info("GetAvailableSlots: generated %d slots for service=%d, provider=%d, date=%s",
		len(slots), req.ServiceID, service.ProviderID, req.Date.Format(domain.DateFormat))

	return &Response{
		ServiceID:       service.ID,
		ProviderID:      service.ProviderID,
		Date:            req.Date,
		DurationMinutes: service.DurationMinutes,
		Slots:           slots,
	}, nil
}
