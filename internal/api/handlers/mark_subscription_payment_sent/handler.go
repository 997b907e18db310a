package mark_subscription_payment_sent

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidState  = "оплата подписки уже отмечена или подписка активна"
)

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

// Handle PATCH /api/v1/providers/me/subscription/payment-sent
// Создает подписку, если ее еще нет
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /providers/me/subscription/payment-sent - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.MarkPaymentSent(r.Context(), providerID)
	if err != nil {
		if errors.Is(err, subscriptions.ErrInvalidState) {
			h.logger.Warn("PATCH /providers/me/subscription/payment-sent - Invalid state: provider_id=%d", providerID)
			handlers.RespondErrorCode(w, http.StatusConflict, handlers.CodeBadState, msgInvalidState)
			return
		}
		h.logger.Error("PATCH /providers/me/subscription/payment-sent - Failed: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PATCH /providers/me/subscription/payment-sent - provider_id=%d, status=%s", providerID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, result)
}
