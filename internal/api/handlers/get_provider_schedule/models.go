package get_provider_schedule

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// from и to принимаются в RFC 3339
func ToServiceRequest(providerID int64, statusStr, fromStr, toStr string) (*models.GetProviderScheduleRequest, error) {
	req := &models.GetProviderScheduleRequest{
		ProviderID: providerID,
	}

	if statusStr != "" {
		req.Status = ptr.Ptr(statusStr)
	}

	if fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return nil, err
		}
		req.From = &from
	}

	if toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return nil, err
		}
		req.To = &to
	}

	return req, nil
}
