package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

type mockServiceRepo struct {
	mock.Mock
}

func (m *mockServiceRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

var day = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.UTC)
}

func findSlot(slots []domain.Slot, start time.Time) (domain.Slot, bool) {
	for _, s := range slots {
		if s.StartTime.Equal(start) {
			return s, true
		}
	}
	return domain.Slot{}, false
}

func TestUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	service := &domain.Service{
		ID:              5,
		ProviderID:      7,
		Title:           "Уборка",
		Category:        domain.CategoryCleaning,
		BasePrice:       decimal.NewFromInt(50),
		DurationMinutes: 60,
	}

	t.Run("ProviderWithConfirmedBooking", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		services := new(mockServiceRepo)
		uc := NewUseCase(bookings, services, logger.Nop())

		existing := []*domain.Booking{{
			ID: 1, ProviderID: 7, StartTime: at(10, 0), EndTime: at(11, 0),
			Status: domain.StatusConfirmed, PaymentStatus: domain.PaymentUnpaid,
		}}
		services.On("GetByID", ctx, int64(5)).Return(service, nil).Once()
		bookings.On("GetByProviderWithFilter", ctx, mock.MatchedBy(func(f domain.ProviderBookingsFilter) bool {
			return f.ProviderID == 7 && f.ActiveOnly && f.From != nil && f.From.Equal(day) && f.To != nil && f.To.Before(day.AddDate(0, 0, 1))
		})).Return(existing, nil).Once()

		resp, err := uc.Execute(ctx, &Request{ServiceID: 5, Date: day})
		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.ProviderID)
		assert.Equal(t, 60, resp.DurationMinutes)

		// 09:00 ... 16:00 с шагом 30 минут
		assert.Len(t, resp.Slots, 15)

		slot, ok := findSlot(resp.Slots, at(9, 30))
		require.True(t, ok)
		assert.False(t, slot.Available)

		slot, ok = findSlot(resp.Slots, at(9, 0))
		require.True(t, ok)
		assert.True(t, slot.Available)

		slot, ok = findSlot(resp.Slots, at(11, 0))
		require.True(t, ok)
		assert.True(t, slot.Available)
		assert.True(t, slot.EndTime.Equal(at(12, 0)))

		_, ok = findSlot(resp.Slots, at(16, 30))
		assert.False(t, ok, "slot ending after 17:00 must not be listed")

		for _, s := range resp.Slots {
			assert.False(t, s.EndTime.After(at(17, 0)))
		}

		bookings.AssertNumberOfCalls(t, "GetByProviderWithFilter", 1)
		bookings.AssertExpectations(t)
		services.AssertExpectations(t)
	})

	t.Run("IdempotentForSameSnapshot", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		services := new(mockServiceRepo)
		uc := NewUseCase(bookings, services, logger.Nop())

		existing := []*domain.Booking{
			{ID: 1, StartTime: at(12, 15), EndTime: at(13, 0), Status: domain.StatusPending},
			{ID: 2, StartTime: at(14, 0), EndTime: at(15, 0), Status: domain.StatusConfirmed},
		}
		services.On("GetByID", ctx, int64(5)).Return(service, nil)
		bookings.On("GetByProviderWithFilter", ctx, mock.Anything).Return(existing, nil)

		first, err := uc.Execute(ctx, &Request{ServiceID: 5, Date: day})
		require.NoError(t, err)
		second, err := uc.Execute(ctx, &Request{ServiceID: 5, Date: day})
		require.NoError(t, err)

		assert.Equal(t, first.Slots, second.Slots)
	})

	t.Run("ServiceNotFound", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		services := new(mockServiceRepo)
		uc := NewUseCase(bookings, services, logger.Nop())

		services.On("GetByID", ctx, int64(99)).Return(nil, serviceRepo.ErrServiceNotFound).Once()

		resp, err := uc.Execute(ctx, &Request{ServiceID: 99, Date: day})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrServiceNotFound)
		bookings.AssertNotCalled(t, "GetByProviderWithFilter", mock.Anything, mock.Anything)
	})

	t.Run("RepositoryFailure", func(t *testing.T) {
		bookings := new(mockBookingRepo)
		services := new(mockServiceRepo)
		uc := NewUseCase(bookings, services, logger.Nop())

		services.On("GetByID", ctx, int64(5)).Return(service, nil).Once()
		bookings.On("GetByProviderWithFilter", ctx, mock.Anything).Return(nil, errors.New("connection refused")).Once()

		_, err := uc.Execute(ctx, &Request{ServiceID: 5, Date: day})
		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		uc := NewUseCase(new(mockBookingRepo), new(mockServiceRepo), logger.Nop())

		_, err := uc.Execute(ctx, &Request{ServiceID: 0, Date: day})
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = uc.Execute(ctx, &Request{ServiceID: 5})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestGenerateSlots(t *testing.T) {
	t.Run("FullWindowService", func(t *testing.T) {
		slots := generateSlots(day, 480*time.Minute, nil)
		require.Len(t, slots, 1)
		assert.True(t, slots[0].StartTime.Equal(at(9, 0)))
		assert.True(t, slots[0].EndTime.Equal(at(17, 0)))
		assert.True(t, slots[0].Available)
	})

	t.Run("LongerThanWindow", func(t *testing.T) {
		assert.Empty(t, generateSlots(day, 481*time.Minute, nil))
	})

	t.Run("ShortServiceFillsWindow", func(t *testing.T) {
		slots := generateSlots(day, 30*time.Minute, nil)
		assert.Len(t, slots, 16)
		assert.True(t, slots[len(slots)-1].StartTime.Equal(at(16, 30)))
	})

	t.Run("InactiveBookingsDoNotBlock", func(t *testing.T) {
		bookings := []*domain.Booking{
			{StartTime: at(9, 0), EndTime: at(12, 0), Status: domain.StatusCancelled},
			{StartTime: at(12, 0), EndTime: at(13, 0), Status: domain.StatusCompleted},
		}
		for _, s := range generateSlots(day, 60*time.Minute, bookings) {
			assert.True(t, s.Available, "slot %s", s.StartTime.Format(domain.TimeFormat))
		}
	})

	t.Run("OrderedByStart", func(t *testing.T) {
		slots := generateSlots(day, 45*time.Minute, nil)
		for i := 1; i < len(slots); i++ {
			assert.True(t, slots[i-1].StartTime.Before(slots[i].StartTime))
		}
	})

	t.Run("KeepsDateLocation", func(t *testing.T) {
		loc := time.FixedZone("UTC+3", 3*60*60)
		date := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)
		slots := generateSlots(date, 60*time.Minute, nil)
		require.NotEmpty(t, slots)
		assert.Equal(t, 9, slots[0].StartTime.Hour())
		assert.Equal(t, loc, slots[0].StartTime.Location())
	})
}
