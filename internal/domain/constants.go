package domain

import "time"

// Рабочие часы и шаг генерации слотов (одинаковые для всех провайдеров)
const (
	WorkdayStartHour = 9
	WorkdayEndHour   = 17
	SlotStepMinutes  = 30
)

// Business validation constants
const (
	MinServiceDurationMinutes = 1
	MaxServiceDurationMinutes = 480 // 8 hours, длина рабочего окна
	MaxNotesLength            = 500
	MaxServiceTitleLength     = 200
	MaxServiceDescription     = 5000

	FreeTierServiceLimit = 1
	MinServiceLimit      = 1
	MaxServiceLimit      = 100
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы бронирований, которые занимают время провайдера
// Используется в проверке конфликтов и при генерации слотов
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// WorkingWindow возвращает рабочее окно [09:00, 17:00) для даты в её же часовом поясе
func WorkingWindow(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	loc := date.Location()
	return time.Date(y, m, d, WorkdayStartHour, 0, 0, 0, loc),
		time.Date(y, m, d, WorkdayEndHour, 0, 0, 0, loc)
}

// DayRange возвращает начало и конец суток для даты
func DayRange(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
