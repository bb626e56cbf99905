package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsumerMetrics records message handling outcomes for queue consumers.
type ConsumerMetrics struct {
	processed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewConsumerMetrics registers consumer metrics on the provided registerer.
func NewConsumerMetrics(reg prometheus.Registerer) *ConsumerMetrics {
	if reg == nil {
		return &ConsumerMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_messages_processed_total",
		Help: "Messages acknowledged by the consumer.",
	}, []string{"queue"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consumer_messages_failed_total",
		Help: "Messages that failed processing and were requeued.",
	}, []string{"queue"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "consumer_message_duration_seconds",
		Help:    "Time spent handling a single message in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"queue"})
	reg.MustRegister(processed, failed, duration)
	return &ConsumerMetrics{
		processed: processed,
		failed:    failed,
		duration:  duration,
	}
}

// IncProcessed increments the processed counter for the queue.
func (c *ConsumerMetrics) IncProcessed(queue string) {
	if c == nil || c.processed == nil {
		return
	}
	c.processed.WithLabelValues(normalizeLabel(queue)).Inc()
}

// IncFailed increments the failed counter for the queue.
func (c *ConsumerMetrics) IncFailed(queue string) {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.WithLabelValues(normalizeLabel(queue)).Inc()
}

// ObserveDuration records the handling duration for a single message.
func (c *ConsumerMetrics) ObserveDuration(queue string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(queue)).Observe(duration.Seconds())
}
