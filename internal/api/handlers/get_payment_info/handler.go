package get_payment_info

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions"
)

const msgNotConfigured = "реквизиты для оплаты не настроены"

type Handler struct {
	service SubscriptionService
	logger  Logger
}

func NewHandler(service SubscriptionService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/payment-info
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.PaymentInfo()
	if err != nil {
		if errors.Is(err, subscriptions.ErrPaymentNotConfigured) {
			h.logger.Warn("GET /payment-info - Payment collector is not configured")
			handlers.RespondNotFound(w, msgNotConfigured)
			return
		}
		h.logger.Error("GET /payment-info - Failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
