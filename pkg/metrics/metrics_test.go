package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_CanBeCreatedTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		New("a")
		New("b")
	})
}

func TestMetrics_Counters(t *testing.T) {
	m := New("test")

	m.IncBookingCreated("test")
	m.IncBookingCreated("test")
	m.IncBookingConflict("test")
	m.IncBookingTransition("test", "status", "CONFIRMED")
	m.IncCapacityRejection("test")
	m.ObserveDBQuery("test", "query", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingConflicts.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("test", "status", "CONFIRMED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capacityRejections.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dbQueryErrors.WithLabelValues("test", "query")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("test")
	m.ObserveHTTPRequest("test", http.MethodGet, "/api/v1/bookings/{bookingId}", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestBusiness_BindsServiceLabel(t *testing.T) {
	m := New("test")
	b := m.Business("marketplace")

	b.BookingCreated()
	b.BookingConflict()
	b.BookingTransition("payment", "PROVIDER_CONFIRMED")
	b.CapacityRejected()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsCreated.WithLabelValues("marketplace")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingConflicts.WithLabelValues("marketplace")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("marketplace", "payment", "PROVIDER_CONFIRMED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capacityRejections.WithLabelValues("marketplace")))
}
