package activate_subscription

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/subscriptions/models"
)

const (
	msgInvalidProviderID  = "некорректный ID провайдера"
	msgInvalidRequestBody = "некорректное тело запроса, serviceLimit от 1 до 100"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "активировать подписку может только администратор"
	msgNotFound           = "подписка не найдена"
	msgInvalidState       = "подписку можно активировать только после отметки об оплате"
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

// Handle PATCH /api/v1/admin/providers/{providerId}/subscription/activate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, err := handlers.PathInt64(r, "providerId")
	if err != nil {
		h.logger.Warn("PATCH /admin/providers/{id}/subscription/activate - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.ActivateRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PATCH /admin/providers/{id}/subscription/activate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.AdminID = adminID
	req.ProviderID = providerID

	result, err := h.service.Activate(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, subscriptions.ErrAccessDenied):
			h.logger.Warn("PATCH /admin/providers/{id}/subscription/activate - Access denied: admin_id=%d", adminID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, subscriptions.ErrSubscriptionNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, subscriptions.ErrInvalidState):
			handlers.RespondErrorCode(w, http.StatusConflict, handlers.CodeBadState, msgInvalidState)

		case errors.Is(err, subscriptions.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PATCH /admin/providers/{id}/subscription/activate - Failed: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /admin/providers/{id}/subscription/activate - Activated: provider_id=%d, admin_id=%d, limit=%d",
		providerID, adminID, result.ServiceLimit)
	handlers.RespondJSON(w, http.StatusOK, result)
}
