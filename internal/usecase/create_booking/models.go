package create_booking

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID int64     // ID клиента
	ServiceID  int64     // ID услуги
	StartTime  time.Time // Начало, конец вычисляется по длительности услуги
	Notes      *string   // Заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}
