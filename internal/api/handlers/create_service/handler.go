package create_service

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	createService "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_service"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidInput       = "некорректные данные услуги"
	msgConcurrentUpdate   = "каталог изменился параллельно, повторите запрос"
)

type Handler struct {
	useCase CreateServiceUseCase
	logger  Logger
}

func NewHandler(useCase CreateServiceUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /services - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateServiceRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /services - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(providerID))
	if err != nil {
		var capErr *createService.CapacityError
		switch {
		case errors.As(err, &capErr):
			h.logger.Warn("POST /services - Capacity exceeded: provider_id=%d, limit=%d, current=%d",
				providerID, capErr.Limit, capErr.CurrentCount)
			handlers.RespondCapacity(w, capErr.Limit, capErr.CurrentCount)

		case errors.Is(err, createService.ErrConcurrentUpdate):
			h.logger.Warn("POST /services - Concurrent catalog update: provider_id=%d", providerID)
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, createService.ErrInvalidInput):
			h.logger.Warn("POST /services - Invalid input: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /services - Failed to create service: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /services - Service created successfully: service_id=%d, provider_id=%d",
		result.Service.ID, providerID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
