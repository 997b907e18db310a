package get_capacity

import (
	"net/http"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
)

const msgMissingUserID = "отсутствует ID пользователя"

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

// Handle GET /api/v1/providers/me/capacity
// Только проверка, услуга не создается
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /providers/me/capacity - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.CanAddService(r.Context(), providerID)
	if err != nil {
		h.logger.Error("GET /providers/me/capacity - Failed to check capacity: provider_id=%d, error=%v", providerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /providers/me/capacity - provider_id=%d, allowed=%t, limit=%d, current=%d",
		providerID, result.Allowed, result.Limit, result.CurrentCount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
