package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// generateSlots строит кандидатов с шагом domain.SlotStepMinutes внутри рабочего окна даты.
// Слот, который заканчивается после конца окна, не попадает в результат совсем.
// Доступность считается по фиксированному набору бронирований, без повторных запросов
//
// Пример (услуга 60 минут, бронирование 10:00-11:00):
// - 09:30-10:30 → недоступен (пересекается)
// - 09:00-10:00 → доступен (граничит)
// - 11:00-12:00 → доступен (граничит)
// - 16:00-17:00 → последний слот, 16:30 не выдается
func generateSlots(date time.Time, duration time.Duration, bookings []*domain.Booking) []domain.Slot {
	slots := make([]domain.Slot, 0)
	if duration <= 0 || duration > domain.MaxServiceDurationMinutes*time.Minute {
		return slots
	}

	windowStart, windowEnd := domain.WorkingWindow(date)
	step := domain.SlotStepMinutes * time.Minute

	for start := windowStart; start.Before(windowEnd); start = start.Add(step) {
		end := start.Add(duration)
		if end.After(windowEnd) {
			break
		}

		_, busy := domain.OverlapsAny(start, end, bookings)
		slots = append(slots, domain.Slot{
			StartTime: start,
			EndTime:   end,
			Available: !busy,
		})
	}

	return slots
}
