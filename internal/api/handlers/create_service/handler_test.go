package create_service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	createService "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_service"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *createService.Request) (*createService.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*createService.Response), args.Error(1)
}

const validBody = `{"title":"Генеральная уборка","category":"CLEANING","basePrice":"120.50","durationMinutes":90}`

func post(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/services", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 7))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandler_Handle(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		uc := new(mockUseCase)
		uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createService.Request) bool {
			return req.ProviderID == 7 && req.Category == domain.CategoryCleaning &&
				req.BasePrice.Equal(decimal.RequireFromString("120.5")) && req.DurationMinutes == 90
		})).Return(&createService.Response{
			Service: &domain.Service{
				ID: 1, ProviderID: 7, Title: "Генеральная уборка", Category: domain.CategoryCleaning,
				BasePrice: decimal.RequireFromString("120.50"), DurationMinutes: 90,
			},
			Capacity: domain.CapacityDecision{Allowed: false, Limit: 1, CurrentCount: 1},
		}, nil).Once()

		rec := post(NewHandler(uc, logger.Nop()), validBody)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp CreateServiceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Service.ID)
		assert.False(t, resp.Capacity.CanAddMore)
		uc.AssertExpectations(t)
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		uc := new(mockUseCase)
		uc.On("Execute", mock.Anything, mock.Anything).
			Return(nil, &createService.CapacityError{Limit: 1, CurrentCount: 1}).Once()

		rec := post(NewHandler(uc, logger.Nop()), validBody)

		require.Equal(t, http.StatusForbidden, rec.Code)
		var resp handlers.CapacityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, handlers.CodeCapacity, resp.Code)
		assert.True(t, resp.UpgradeRequired)
		assert.Equal(t, 1, resp.Limit)
		assert.Equal(t, 1, resp.CurrentCount)
	})

	t.Run("invalid input from use case", func(t *testing.T) {
		uc := new(mockUseCase)
		uc.On("Execute", mock.Anything, mock.Anything).Return(nil, createService.ErrInvalidInput).Once()

		rec := post(NewHandler(uc, logger.Nop()), validBody)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("concurrent update", func(t *testing.T) {
		uc := new(mockUseCase)
		uc.On("Execute", mock.Anything, mock.Anything).Return(nil, createService.ErrConcurrentUpdate).Once()

		rec := post(NewHandler(uc, logger.Nop()), validBody)
		require.Equal(t, http.StatusConflict, rec.Code)
		var resp handlers.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, handlers.CodeConflict, resp.Code)
	})

		t.Run("duration out of range", func(t *testing.T) {
		uc := new(mockUseCase)
		rec := post(NewHandler(uc, logger.Nop()),
			`{"title":"x","category":"CLEANING","basePrice":"10","durationMinutes":600}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})
}
