package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testBooking() *domain.Booking {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:            42,
		ServiceID:     5,
		CustomerID:    100,
		ProviderID:    200,
		StartTime:     start,
		EndTime:       start.Add(time.Hour),
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentProviderConfirmed,
		ServicePrice:  decimal.RequireFromString("49.90"),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(writer, Config{Topic: "bookings"}, logger.Nop())

	change := domain.StateChange{
		FromStatus:  domain.StatusPending,
		FromPayment: domain.PaymentCustomerMarkedPaid,
		ToStatus:    domain.StatusConfirmed,
		ToPayment:   domain.PaymentProviderConfirmed,
	}
	event := BookingChanged(testBooking(), change, time.Now())

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "bookings", msg.Topic)
	assert.Equal(t, "200", string(msg.Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, TypeBookingPaymentChanged, decoded.Type)
	assert.Equal(t, int64(42), decoded.Booking.ID)
	assert.Equal(t, "CONFIRMED", decoded.Booking.Status)
	require.NotNil(t, decoded.PreviousStatus)
	assert.Equal(t, "PENDING", *decoded.PreviousStatus)
	assert.True(t, decoded.Booking.ServicePrice.Equal(decimal.RequireFromString("49.90")))

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(writer, Config{Topic: "bookings"}, logger.Nop())

	err := p.Publish(context.Background(), BookingCreated(testBooking(), time.Now()))
	assert.ErrorIs(t, err, ErrPublish)
}

func TestBookingChanged_StatusOnly(t *testing.T) {
	change := domain.StateChange{
		FromStatus:  domain.StatusPending,
		FromPayment: domain.PaymentUnpaid,
		ToStatus:    domain.StatusCancelled,
		ToPayment:   domain.PaymentUnpaid,
	}
	event := BookingChanged(testBooking(), change, time.Now())
	assert.Equal(t, TypeBookingStatusChanged, event.Type)
	assert.NotEmpty(t, event.ID)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092, ,b:9092"))
	assert.Empty(t, splitBrokers(""))
}
