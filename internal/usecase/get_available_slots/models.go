package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Request модель запроса на получение слотов
type Request struct {
	ServiceID int64     // ID услуги
	Date      time.Time // Дата (время игнорируется, часовой пояс берется из даты)
}

// Response модель ответа со списком слотов
type Response struct {
	ServiceID       int64
	ProviderID      int64
	Date            time.Time
	DurationMinutes int
	Slots           []domain.Slot // Упорядочены по времени начала
}
