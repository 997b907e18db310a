package domain

import "time"

// Overlaps проверяет пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd).
// Интервалы, которые только касаются границами, не пересекаются:
// бронирование 10:00-11:00 не мешает бронированию 11:00-12:00
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsAny возвращает первое активное бронирование, пересекающееся с [start, end)
func OverlapsAny(start, end time.Time, bookings []*Booking) (*Booking, bool) {
	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return b, true
		}
	}
	return nil, false
}
