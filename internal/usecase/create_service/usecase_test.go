package create_service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	subscriptionRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/subscription"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

type mockServiceRepo struct {
	mock.Mock
}

func (m *mockServiceRepo) LockProvider(ctx context.Context, providerID int64) error {
	args := m.Called(ctx, providerID)
	return args.Error(0)
}

func (m *mockServiceRepo) CountByProvider(ctx context.Context, providerID int64) (int, error) {
	args := m.Called(ctx, providerID)
	return args.Int(0), args.Error(1)
}

func (m *mockServiceRepo) Create(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	args := m.Called(ctx, service)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type mockSubscriptionRepo struct {
	mock.Mock
}

func (m *mockSubscriptionRepo) GetByProviderID(ctx context.Context, providerID int64) (*domain.Subscription, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

type passthroughTx struct {
	commitErr error
}

func (tx passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return tx.commitErr
}

type countingMetrics struct {
	rejections int
}

func (m *countingMetrics) CapacityRejected() { m.rejections++ }

func validRequest() *Request {
	return &Request{
		ProviderID:      200,
		Title:           "  Генеральная уборка ",
		Description:     "Квартира до 60 м2",
		Category:        domain.CategoryCleaning,
		BasePrice:       decimal.RequireFromString("120.50"),
		DurationMinutes: 180,
	}
}

func TestUseCase_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("FreeTierFirstService", func(t *testing.T) {
		services := new(mockServiceRepo)
		subs := new(mockSubscriptionRepo)
		metrics := &countingMetrics{}
		uc := NewUseCase(services, subs, passthroughTx{}, metrics, logger.Nop())

		services.On("LockProvider", ctx, int64(200)).Return(nil).Once()
		subs.On("GetByProviderID", ctx, int64(200)).Return(nil, subscriptionRepo.ErrSubscriptionNotFound).Once()
		services.On("CountByProvider", ctx, int64(200)).Return(0, nil).Once()
		services.On("Create", ctx, mock.MatchedBy(func(s *domain.Service) bool {
			return s.Title == "Генеральная уборка" && s.ProviderID == 200
		})).Return(&domain.Service{ID: 1, ProviderID: 200, Title: "Генеральная уборка"}, nil).Once()

		resp, err := uc.Execute(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Service.ID)
		assert.Equal(t, domain.CapacityDecision{Allowed: false, Limit: 1, CurrentCount: 1}, resp.Capacity)
		assert.Equal(t, 0, metrics.rejections)
		services.AssertExpectations(t)
		subs.AssertExpectations(t)
	})

	t.Run("FreeTierWithOneServiceIsRejected", func(t *testing.T) {
		services := new(mockServiceRepo)
		subs := new(mockSubscriptionRepo)
		metrics := &countingMetrics{}
		uc := NewUseCase(services, subs, passthroughTx{}, metrics, logger.Nop())

		services.On("LockProvider", ctx, int64(200)).Return(nil).Once()
		subs.On("GetByProviderID", ctx, int64(200)).Return(nil, subscriptionRepo.ErrSubscriptionNotFound).Once()
		services.On("CountByProvider", ctx, int64(200)).Return(1, nil).Once()

		resp, err := uc.Execute(ctx, validRequest())
		assert.Nil(t, resp)
		require.ErrorIs(t, err, ErrCapacityExceeded)

		var capErr *CapacityError
		require.True(t, errors.As(err, &capErr))
		assert.Equal(t, 1, capErr.Limit)
		assert.Equal(t, 1, capErr.CurrentCount)
		assert.Equal(t, 1, metrics.rejections)
		services.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("PaymentSentSubscriptionGivesNoExtraCapacity", func(t *testing.T) {
		services := new(mockServiceRepo)
		subs := new(mockSubscriptionRepo)
		uc := NewUseCase(services, subs, passthroughTx{}, &countingMetrics{}, logger.Nop())

		services.On("LockProvider", ctx, int64(200)).Return(nil).Once()
		subs.On("GetByProviderID", ctx, int64(200)).Return(&domain.Subscription{
			ProviderID: 200, Status: domain.SubscriptionPaymentSent, ServiceLimit: 10,
		}, nil).Once()
		services.On("CountByProvider", ctx, int64(200)).Return(1, nil).Once()

		_, err := uc.Execute(ctx, validRequest())
		assert.ErrorIs(t, err, ErrCapacityExceeded)
	})

	t.Run("ActiveSubscriptionRaisesLimit", func(t *testing.T) {
		services := new(mockServiceRepo)
		subs := new(mockSubscriptionRepo)
		uc := NewUseCase(services, subs, passthroughTx{}, &countingMetrics{}, logger.Nop())

		services.On("LockProvider", ctx, int64(200)).Return(nil).Once()
		subs.On("GetByProviderID", ctx, int64(200)).Return(&domain.Subscription{
			ProviderID: 200, Status: domain.SubscriptionActive, ServiceLimit: 5,
		}, nil).Once()
		services.On("CountByProvider", ctx, int64(200)).Return(3, nil).Once()
		services.On("Create", ctx, mock.Anything).Return(&domain.Service{ID: 4, ProviderID: 200}, nil).Once()

		resp, err := uc.Execute(ctx, validRequest())
		require.NoError(t, err)
		assert.Equal(t, domain.CapacityDecision{Allowed: true, Limit: 5, CurrentCount: 4}, resp.Capacity)
	})

	t.Run("SerializationFailureIsRetryable", func(t *testing.T) {
		tests := []struct {
			name      string
			commitErr error
			createErr error
		}{
			{name: "OnCommit", commitErr: fmt.Errorf("%w: %w", txmanager.ErrCommit, &pq.Error{Code: "40001"})},
			{name: "DeadlockOnInsert", createErr: fmt.Errorf("insert: %w", &pq.Error{Code: "40P01"})},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				services := new(mockServiceRepo)
				subs := new(mockSubscriptionRepo)
				metrics := &countingMetrics{}
				uc := NewUseCase(services, subs, passthroughTx{commitErr: tt.commitErr}, metrics, logger.Nop())

				services.On("LockProvider", ctx, int64(200)).Return(nil).Once()
				subs.On("GetByProviderID", ctx, int64(200)).Return(nil, subscriptionRepo.ErrSubscriptionNotFound).Once()
				services.On("CountByProvider", ctx, int64(200)).Return(0, nil).Once()
				if tt.createErr != nil {
					services.On("Create", ctx, mock.Anything).Return(nil, tt.createErr).Once()
				} else {
					services.On("Create", ctx, mock.Anything).Return(&domain.Service{ID: 1, ProviderID: 200}, nil).Once()
				}

				resp, err := uc.Execute(ctx, validRequest())
				assert.Nil(t, resp)
				assert.ErrorIs(t, err, ErrConcurrentUpdate)
				assert.NotErrorIs(t, err, ErrInternal)
				assert.Equal(t, 0, metrics.rejections)
			})
		}
	})

	t.Run("SubscriptionLookupFailure", func(t *testing.T) {
		services := new(mockServiceRepo)
		subs := new(mockSubscriptionRepo)
		uc := NewUseCase(services, subs, passthroughTx{}, &countingMetrics{}, logger.Nop())

		services.On("LockProvider", ctx, int64(200)).Return(nil).Once()
		subs.On("GetByProviderID", ctx, int64(200)).Return(nil, errors.New("timeout")).Once()

		_, err := uc.Execute(ctx, validRequest())
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *Request)
	}{
		{"NoProvider", func(r *Request) { r.ProviderID = 0 }},
		{"BlankTitle", func(r *Request) { r.Title = "   " }},
		{"UnknownCategory", func(r *Request) { r.Category = "GARDENING" }},
		{"ZeroPrice", func(r *Request) { r.BasePrice = decimal.Zero }},
		{"NegativePrice", func(r *Request) { r.BasePrice = decimal.NewFromInt(-1) }},
		{"ZeroDuration", func(r *Request) { r.DurationMinutes = 0 }},
		{"TooLong", func(r *Request) { r.DurationMinutes = domain.MaxServiceDurationMinutes + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.modify(req)
			assert.ErrorIs(t, validateRequest(req), ErrInvalidInput)
		})
	}

	assert.NoError(t, validateRequest(validRequest()))
}
