package rest

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector records request metrics in Prometheus.
type MetricsCollector struct {
	requests          *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	retries           *prometheus.CounterVec
	transportFailures *prometheus.CounterVec
	cacheHits         prometheus.Counter
}

// NewMetricsCollector registers the restverb metrics with registry.
// If registry is nil, uses the default Prometheus registry. Collectors already
// registered by an earlier client are reused, so any number of clients can
// share one registry.
func NewMetricsCollector(registry prometheus.Registerer) (*MetricsCollector, error) {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	requests, err := register(registry, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restverb_requests_total",
			Help: "Total number of requests by method and status code",
		},
		[]string{"method", "code"},
	))
	if err != nil {
		return nil, err
	}

	requestDuration, err := register(registry, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "restverb_request_duration_seconds",
			Help: "Request duration in seconds, retries included",
			Buckets: []float64{
				0.005, // 5ms
				0.01,  // 10ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.5,   // 500ms
				1.0,   // 1s
				5.0,   // 5s
				30.0,  // 30s
				120.0, // 2m
			},
		},
		[]string{"method"},
	))
	if err != nil {
		return nil, err
	}

	retries, err := register(registry, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restverb_retries_total",
			Help: "Total number of retry attempts",
		},
		[]string{"method"},
	))
	if err != nil {
		return nil, err
	}

	transportFailures, err := register(registry, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restverb_transport_failures_total",
			Help: "Total number of calls that received no response after all retries",
		},
		[]string{"method"},
	))
	if err != nil {
		return nil, err
	}

	cacheHits, err := register(registry, prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "restverb_cache_hits_total",
			Help: "Total number of GET calls answered from the response cache",
		},
	))
	if err != nil {
		return nil, err
	}

	return &MetricsCollector{
		requests:          requests,
		requestDuration:   requestDuration,
		retries:           retries,
		transportFailures: transportFailures,
		cacheHits:         cacheHits,
	}, nil
}

// register adds collector to registry, or returns the equivalent collector
// that is already registered.
func register[T prometheus.Collector](registry prometheus.Registerer, collector T) (T, error) {
	err := registry.Register(collector)
	if err == nil {
		return collector, nil
	}

	var registered prometheus.AlreadyRegisteredError
	if errors.As(err, &registered) {
		if existing, ok := registered.ExistingCollector.(T); ok {
			return existing, nil
		}
	}

	var zero T

	return zero, fmt.Errorf("registering metrics: %w", err)
}

// RecordRequest records one completed call. statusCode 0 counts as a transport failure.
func (m *MetricsCollector) RecordRequest(method string, statusCode int, duration time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())

	if statusCode == 0 {
		m.transportFailures.WithLabelValues(method).Inc()
	}
}

// IncrementRetries increments the retry counter.
func (m *MetricsCollector) IncrementRetries(method string) {
	m.retries.WithLabelValues(method).Inc()
}

// IncrementCacheHits increments the cache hit counter.
func (m *MetricsCollector) IncrementCacheHits() {
	m.cacheHits.Inc()
}
