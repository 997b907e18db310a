package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор Prometheus-метрик сервиса
// Каждый экземпляр владеет собственным registry, поэтому New можно вызывать многократно (например, в тестах)
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration   *prometheus.HistogramVec
	dbQueryErrors     *prometheus.CounterVec
	dbOpenConnections *prometheus.GaugeVec
	dbInUse           *prometheus.GaugeVec
	dbIdle            *prometheus.GaugeVec
	dbWaitCount       *prometheus.GaugeVec

	bookingsCreated    *prometheus.CounterVec
	bookingConflicts   *prometheus.CounterVec
	bookingTransitions *prometheus.CounterVec
	capacityRejections *prometheus.CounterVec
}

// New создает и регистрирует все метрики
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),
		dbQueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),
		dbOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),
		dbInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),
		dbIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),
		dbWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of created bookings",
		}, []string{"service"}),
		bookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Booking requests rejected because of an overlapping active booking",
		}, []string{"service"}),
		bookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status and payment transitions",
		}, []string{"service", "kind", "to"}),
		capacityRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "service_capacity_rejections_total",
			Help: "Service creations rejected by the capacity policy",
		}, []string{"service"}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.dbQueryDuration,
		m.dbQueryErrors,
		m.dbOpenConnections,
		m.dbInUse,
		m.dbIdle,
		m.dbWaitCount,
		m.bookingsCreated,
		m.bookingConflicts,
		m.bookingTransitions,
		m.capacityRejections,
	)

	return m
}

// Handler возвращает HTTP handler для эндпоинта /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry возвращает registry (для тестов)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(service, method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(service, method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(service, method, route).Observe(duration.Seconds())
}

func (m *Metrics) ObserveDBQuery(service, operation string, duration time.Duration, err error) {
	m.dbQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
	if err != nil {
		m.dbQueryErrors.WithLabelValues(service, operation).Inc()
	}
}

// SetDBPoolStats обновляет метрики connection pool
func (m *Metrics) SetDBPoolStats(service string, open, inUse, idle int, waitCount int64) {
	m.dbOpenConnections.WithLabelValues(service).Set(float64(open))
	m.dbInUse.WithLabelValues(service).Set(float64(inUse))
	m.dbIdle.WithLabelValues(service).Set(float64(idle))
	m.dbWaitCount.WithLabelValues(service).Set(float64(waitCount))
}

func (m *Metrics) IncBookingCreated(service string) {
	m.bookingsCreated.WithLabelValues(service).Inc()
}

func (m *Metrics) IncBookingConflict(service string) {
	m.bookingConflicts.WithLabelValues(service).Inc()
}

// IncBookingTransition kind - "status" или "payment"
func (m *Metrics) IncBookingTransition(service, kind, to string) {
	m.bookingTransitions.WithLabelValues(service, kind, to).Inc()
}

func (m *Metrics) IncCapacityRejection(service string) {
	m.capacityRejections.WithLabelValues(service).Inc()
}

// Business метрики бизнес-операций, привязанные к имени сервиса
type Business struct {
	m       *Metrics
	service string
}

// Business возвращает счетчики бизнес-операций для usecase-слоя
func (m *Metrics) Business(service string) *Business {
	return &Business{m: m, service: service}
}

func (b *Business) BookingCreated() {
	b.m.IncBookingCreated(b.service)
}

func (b *Business) BookingConflict() {
	b.m.IncBookingConflict(b.service)
}

func (b *Business) BookingTransition(kind, to string) {
	b.m.IncBookingTransition(b.service, kind, to)
}

func (b *Business) CapacityRejected() {
	b.m.IncCapacityRejection(b.service)
}
