package update_booking_status

import (
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateStatusRequest) ToServiceRequest(callerID int64) *models.UpdateStatusRequest {
	return &models.UpdateStatusRequest{
		CallerID: callerID,
		Status:   r.Status,
	}
}
