package bookings

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
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/events"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
)

// casRepo хранит одно бронирование и применяет переходы как условный UPDATE
type casRepo struct {
	mock.Mock
	booking *domain.Booking
	applied int
}

func (r *casRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *r.booking
	return &copied, nil
}

func (r *casRepo) GetByCustomer(ctx context.Context, filter domain.CustomerBookingsFilter) ([]*domain.Booking, error) {
	args := r.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (r *casRepo) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	args := r.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (r *casRepo) ApplyStateChange(_ context.Context, id int64, change domain.StateChange) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	if r.booking.Status != change.FromStatus || r.booking.PaymentStatus != change.FromPayment {
		return nil, bookingRepo.ErrStateChanged
	}
	r.booking.Status = change.ToStatus
	r.booking.PaymentStatus = change.ToPayment
	r.applied++
	copied := *r.booking
	return &copied, nil
}

type fixedTime struct {
	now time.Time
}

func (f fixedTime) Now() time.Time { return f.now }

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

type recordingMetrics struct {
	transitions []string
}

func (m *recordingMetrics) BookingTransition(kind, to string) {
	m.transitions = append(m.transitions, kind+":"+to)
}

const (
	customerID = int64(100)
	providerID = int64(200)
	strangerID = int64(300)
	bookingID  = int64(1)
)

var (
	bookingStart = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	beforeStart  = bookingStart.Add(-24 * time.Hour)
)

type fixture struct {
	svc       *Service
	repo      *casRepo
	publisher *recordingPublisher
	metrics   *recordingMetrics
}

func newFixture(status domain.BookingStatus, payment domain.PaymentStatus, now time.Time) *fixture {
	f := &fixture{
		repo: &casRepo{booking: &domain.Booking{
			ID:            bookingID,
			ServiceID:     5,
			CustomerID:    customerID,
			ProviderID:    providerID,
			StartTime:     bookingStart,
			EndTime:       bookingStart.Add(time.Hour),
			Status:        status,
			PaymentStatus: payment,
			ServiceTitle:  "Репетитор по математике",
			ServicePrice:  decimal.NewFromInt(25),
		}},
		publisher: &recordingPublisher{},
		metrics:   &recordingMetrics{},
	}
	f.svc = NewService(f.repo, f.publisher, f.metrics, logger.Nop())
	f.svc.timeProvider = fixedTime{now: now}
	return f
}

func TestService_MarkAsPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("TwiceFailsWithBadState", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		resp, err := f.svc.MarkAsPaid(ctx, bookingID, customerID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.PaymentCustomerMarkedPaid), resp.PaymentStatus)
		assert.Equal(t, string(domain.StatusPending), resp.Status)

		resp, err = f.svc.MarkAsPaid(ctx, bookingID, customerID)
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		var transitionErr *domain.TransitionError
		require.True(t, errors.As(err, &transitionErr))
		assert.Equal(t, domain.PaymentCustomerMarkedPaid, transitionErr.PaymentStatus)
		assert.Equal(t, 1, f.repo.applied)
	})

	t.Run("ProviderCannotMarkPaid", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		_, err := f.svc.MarkAsPaid(ctx, bookingID, providerID)
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Equal(t, 0, f.repo.applied)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		_, err := f.svc.MarkAsPaid(ctx, 999, customerID)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("ConfirmsPaymentAndBookingTogether", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentCustomerMarkedPaid, beforeStart)

		resp, err := f.svc.ConfirmPayment(ctx, bookingID, providerID)
		require.NoError(t, err)
		assert.Equal(t, string(domain.PaymentProviderConfirmed), resp.PaymentStatus)
		assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
		assert.Equal(t, 1, f.repo.applied)

		assert.ElementsMatch(t, []string{"status:CONFIRMED", "payment:PROVIDER_CONFIRMED"}, f.metrics.transitions)
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, events.TypeBookingPaymentChanged, f.publisher.events[0].Type)
	})

	t.Run("RequiresCustomerMark", func(t *testing.T) {
		f := newFixture(domain.StatusConfirmed, domain.PaymentUnpaid, beforeStart)

		_, err := f.svc.ConfirmPayment(ctx, bookingID, providerID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("CustomerCannotConfirm", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentCustomerMarkedPaid, beforeStart)

		_, err := f.svc.ConfirmPayment(ctx, bookingID, customerID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("NonOwnerGetsPermissionErrorWithoutChange", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		_, err := f.svc.UpdateStatus(ctx, bookingID, &models.UpdateStatusRequest{CallerID: strangerID, Status: "CONFIRMED"})
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Equal(t, domain.StatusPending, f.repo.booking.Status)
		assert.Equal(t, 0, f.repo.applied)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("ProviderConfirms", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		resp, err := f.svc.UpdateStatus(ctx, bookingID, &models.UpdateStatusRequest{CallerID: providerID, Status: "CONFIRMED"})
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", resp.Status)
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, events.TypeBookingStatusChanged, f.publisher.events[0].Type)
	})

	t.Run("CustomerCannotConfirm", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		_, err := f.svc.UpdateStatus(ctx, bookingID, &models.UpdateStatusRequest{CallerID: customerID, Status: "CONFIRMED"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("CompleteAfterEnd", func(t *testing.T) {
		f := newFixture(domain.StatusConfirmed, domain.PaymentUnpaid, bookingStart.Add(2*time.Hour))

		resp, err := f.svc.UpdateStatus(ctx, bookingID, &models.UpdateStatusRequest{CallerID: providerID, Status: "COMPLETED"})
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", resp.Status)
	})

	t.Run("CompleteBeforeEndIsBadState", func(t *testing.T) {
		f := newFixture(domain.StatusConfirmed, domain.PaymentUnpaid, bookingStart.Add(30*time.Minute))

		_, err := f.svc.UpdateStatus(ctx, bookingID, &models.UpdateStatusRequest{CallerID: providerID, Status: "COMPLETED"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		_, err := f.svc.UpdateStatus(ctx, bookingID, &models.UpdateStatusRequest{CallerID: providerID, Status: "NO_SHOW"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

// lostRaceRepo имитирует конкурентное изменение между чтением и условным UPDATE
type lostRaceRepo struct {
	*casRepo
}

func (r *lostRaceRepo) ApplyStateChange(ctx context.Context, id int64, change domain.StateChange) (*domain.Booking, error) {
	r.booking.Status = domain.StatusCancelled
	return r.casRepo.ApplyStateChange(ctx, id, change)
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("CustomerCancelsConfirmedBeforeEnd", func(t *testing.T) {
		f := newFixture(domain.StatusConfirmed, domain.PaymentUnpaid, beforeStart)

		resp, err := f.svc.Cancel(ctx, bookingID, customerID)
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
	})

	t.Run("ConfirmedAfterEndCannotBeCancelled", func(t *testing.T) {
		f := newFixture(domain.StatusConfirmed, domain.PaymentUnpaid, bookingStart.Add(2*time.Hour))

		_, err := f.svc.Cancel(ctx, bookingID, providerID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("CompletedIsTerminal", func(t *testing.T) {
		f := newFixture(domain.StatusCompleted, domain.PaymentProviderConfirmed, bookingStart.Add(2*time.Hour))

		_, err := f.svc.Cancel(ctx, bookingID, customerID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("LostRaceReportsCurrentState", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)
		racing := &lostRaceRepo{casRepo: f.repo}
		svc := NewService(racing, f.publisher, f.metrics, logger.Nop())
		svc.timeProvider = fixedTime{now: beforeStart}

		_, err := svc.UpdateStatus(ctx, bookingID, &models.UpdateStatusRequest{CallerID: providerID, Status: "CONFIRMED"})
		require.ErrorIs(t, err, domain.ErrInvalidTransition)

		var transitionErr *domain.TransitionError
		require.True(t, errors.As(err, &transitionErr))
		assert.Equal(t, domain.StatusCancelled, transitionErr.Status)
		assert.Empty(t, f.publisher.events)
	})
}

func TestService_Reads(t *testing.T) {
	ctx := context.Background()

	t.Run("GetByIDOnlyForParties", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		resp, err := f.svc.GetByID(ctx, bookingID, customerID)
		require.NoError(t, err)
		assert.Equal(t, providerID, resp.ProviderID)
		assert.Equal(t, "2025-03-10T11:00:00Z", resp.EndTime)

		_, err = f.svc.GetByID(ctx, bookingID, providerID)
		assert.NoError(t, err)

		_, err = f.svc.GetByID(ctx, bookingID, strangerID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("ProviderScheduleFilter", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)
		from := bookingStart.Add(-time.Hour)
		to := bookingStart.Add(8 * time.Hour)

		f.repo.On("GetByProviderWithFilter", ctx, mock.MatchedBy(func(filter domain.ProviderBookingsFilter) bool {
			return filter.ProviderID == providerID &&
				filter.Status != nil && *filter.Status == domain.StatusConfirmed &&
				filter.From.Equal(from) && filter.To.Equal(to)
		})).Return([]*domain.Booking{f.repo.booking}, nil).Once()

		resp, err := f.svc.GetProviderSchedule(ctx, &models.GetProviderScheduleRequest{
			ProviderID: providerID,
			Status:     ptr.Ptr("CONFIRMED"),
			From:       &from,
			To:         &to,
		})
		require.NoError(t, err)
		assert.Len(t, resp.Bookings, 1)
		f.repo.AssertExpectations(t)
	})

	t.Run("ProviderScheduleInvalidRange", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)
		from := bookingStart
		to := bookingStart

		_, err := f.svc.GetProviderSchedule(ctx, &models.GetProviderScheduleRequest{ProviderID: providerID, From: &from, To: &to})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})

	t.Run("CustomerBookingsEmptyList", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)
		f.repo.On("GetByCustomer", ctx, domain.CustomerBookingsFilter{CustomerID: customerID}).
			Return([]*domain.Booking{}, nil).Once()

		resp, err := f.svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{CustomerID: customerID})
		require.NoError(t, err)
		assert.NotNil(t, resp.Bookings)
		assert.Empty(t, resp.Bookings)
	})

	t.Run("CustomerBookingsInvalidStatus", func(t *testing.T) {
		f := newFixture(domain.StatusPending, domain.PaymentUnpaid, beforeStart)

		_, err := f.svc.GetCustomerBookings(ctx, &models.GetCustomerBookingsRequest{CustomerID: customerID, Status: ptr.Ptr("LOST")})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
