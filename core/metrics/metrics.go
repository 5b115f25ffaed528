package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clinic_calendar"

// Status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the collectors for the booking engine. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	tokenRefreshes   *prometheus.CounterVec
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	availability     *prometheus.CounterVec
	bookings         *prometheus.CounterVec
	compensations    *prometheus.CounterVec
	assistantCalls   *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		tokenRefreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "OAuth access token refresh attempts by outcome.",
		}, []string{"status"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Calendar provider API calls by operation and outcome.",
		}, []string{"operation", "status"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Calendar provider API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		availability: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_requests_total",
			Help:      "Availability computations by outcome code.",
		}, []string{"outcome"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking transactions by terminal outcome.",
		}, []string{"outcome"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_compensations_total",
			Help:      "Compensating event deletes issued after a failed local write.",
		}, []string{"status"}),
		assistantCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_function_calls_total",
			Help:      "Voice assistant function calls by function and outcome.",
		}, []string{"function", "outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code class.",
		}, []string{"method", "route", "code"}),
	}
	reg.MustRegister(
		m.tokenRefreshes, m.providerCalls, m.providerDuration, m.availability,
		m.bookings, m.compensations, m.assistantCalls, m.httpRequests,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

func (m *Metrics) RecordTokenRefresh(err error) {
	if m == nil {
		return
	}
	m.tokenRefreshes.WithLabelValues(statusOf(err)).Inc()
}

func (m *Metrics) RecordProviderCall(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(operation, statusOf(err)).Inc()
	m.providerDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// RecordAvailability counts a computation; outcome is "ok" or an error code.
func (m *Metrics) RecordAvailability(outcome string) {
	if m == nil {
		return
	}
	m.availability.WithLabelValues(outcome).Inc()
}

// RecordBooking counts a booking by terminal state; outcome is "booked" or an error code.
func (m *Metrics) RecordBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCompensation(err error) {
	if m == nil {
		return
	}
	m.compensations.WithLabelValues(statusOf(err)).Inc()
}

func (m *Metrics) RecordAssistantCall(function, outcome string) {
	if m == nil {
		return
	}
	m.assistantCalls.WithLabelValues(function, outcome).Inc()
}

func (m *Metrics) RecordHTTPRequest(method, route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, code).Inc()
}
