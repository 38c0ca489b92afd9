package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and the booking-domain
// collectors exposed on /metrics.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	bookingsCreated  prometheus.Counter
	bookingConflicts prometheus.Counter
	statusChanges    *prometheus.CounterVec

	availabilityCacheHits   prometheus.Counter
	availabilityCacheMisses prometheus.Counter
}

// NewMetricsService registers the collectors on a fresh registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	bookingsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Total bookings successfully reserved",
	})

	bookingConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Total booking attempts rejected because the slot was taken",
	})

	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_status_changes_total",
		Help: "Total booking status transitions",
	}, []string{"status"})

	availabilityCacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_cache_hits_total",
		Help: "Availability lookups answered from cache",
	})

	availabilityCacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_cache_misses_total",
		Help: "Availability lookups computed from storage",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, bookingsCreated,
		bookingConflicts, statusChanges, availabilityCacheHits,
		availabilityCacheMisses, goroutines)

	return &MetricsService{
		registry:                registry,
		handler:                 promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:         requestDuration,
		requestTotal:            requestTotal,
		bookingsCreated:         bookingsCreated,
		bookingConflicts:        bookingConflicts,
		statusChanges:           statusChanges,
		availabilityCacheHits:   availabilityCacheHits,
		availabilityCacheMisses: availabilityCacheMisses,
	}
}

// Handler exposes the scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, label).Inc()
}

// BookingCreated counts a successful reservation.
func (m *MetricsService) BookingCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

// BookingConflict counts a reservation attempt that lost the slot.
func (m *MetricsService) BookingConflict() {
	if m == nil {
		return
	}
	m.bookingConflicts.Inc()
}

// BookingStatusChanged counts a transition into the given status.
func (m *MetricsService) BookingStatusChanged(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// AvailabilityCacheLookup records whether an availability read hit the cache.
func (m *MetricsService) AvailabilityCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.availabilityCacheHits.Inc()
	} else {
		m.availabilityCacheMisses.Inc()
	}
}
