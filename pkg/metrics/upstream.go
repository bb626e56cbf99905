package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records request outcomes against external services.
type UpstreamMetrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewUpstreamMetrics registers upstream client metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Requests issued to upstream services by method and status.",
	}, []string{"service", "method", "status"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_retries_total",
		Help: "Retry attempts against upstream services.",
	}, []string{"service", "method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of upstream requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method"})
	reg.MustRegister(requests, retries, duration)
	return &UpstreamMetrics{
		requests: requests,
		retries:  retries,
		duration: duration,
	}
}

// ObserveRequest records a completed upstream call.
func (u *UpstreamMetrics) ObserveRequest(service, method string, status int, duration time.Duration) {
	if u == nil || u.requests == nil {
		return
	}
	u.requests.WithLabelValues(normalizeLabel(service), normalizeLabel(method), strconv.Itoa(status)).Inc()
	u.duration.WithLabelValues(normalizeLabel(service), normalizeLabel(method)).Observe(duration.Seconds())
}

// IncRetry increments the retry counter for a service and method.
func (u *UpstreamMetrics) IncRetry(service, method string) {
	if u == nil || u.retries == nil {
		return
	}
	u.retries.WithLabelValues(normalizeLabel(service), normalizeLabel(method)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
