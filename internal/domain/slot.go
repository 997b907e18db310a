package domain

import "time"

// Slot кандидат на бронирование с вычисленной доступностью
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Available bool
}
