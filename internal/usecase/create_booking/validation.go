package create_booking

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CustomerID <= 0 {
		return fmt.Errorf("%w: customerID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// validateTimeWindow проверяет, что интервал [start, end) лежит в рабочем окне дня и не в прошлом.
// Окно считается в UTC, как и при генерации слотов
func validateTimeWindow(start, end, now time.Time) error {
	if start.Before(now) {
		return fmt.Errorf("%w: startTime %s is in the past", ErrInvalidInput, start.Format(time.RFC3339))
	}

	windowStart, windowEnd := domain.WorkingWindow(start.UTC())
	if start.Before(windowStart) {
		return fmt.Errorf("%w: startTime %s is before working hours %02d:00",
			ErrInvalidInput, start.UTC().Format(domain.TimeFormat), domain.WorkdayStartHour)
	}
	if end.After(windowEnd) {
		return fmt.Errorf("%w: booking ends at %s, after working hours %02d:00",
			ErrInvalidInput, end.UTC().Format(domain.TimeFormat), domain.WorkdayEndHour)
	}

	return nil
}
